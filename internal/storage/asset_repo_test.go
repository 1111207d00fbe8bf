package storage

import (
	"context"
	"errors"
	"testing"

	"docrag/internal/apperr"
)

func createTestProject(t *testing.T, repo *ProjectRepo, id string) *Project {
	t.Helper()
	project, err := repo.GetOrCreate(context.Background(), id)
	if err != nil {
		t.Fatalf("GetOrCreate(%q) error = %v", id, err)
	}
	return project
}

func TestAssetRepo_Create(t *testing.T) {
	db := newTestDB(t)
	project := createTestProject(t, NewProjectRepo(db), "proj1")
	repo := NewAssetRepo(db)
	ctx := context.Background()

	asset, err := repo.Create(ctx, &Asset{
		ProjectID: project.ID,
		Type:      AssetTypeFile,
		Name:      "abc123_report.txt",
		Size:      250,
		Config:    map[string]any{"content_type": "text/plain"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if asset.ID == 0 {
		t.Error("expected a database-assigned asset id")
	}

	got, err := repo.GetByName(ctx, project.ID, "abc123_report.txt")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.Size != 250 {
		t.Errorf("Size = %d, want 250", got.Size)
	}
	if got.Config["content_type"] != "text/plain" {
		t.Errorf("Config = %v, want content_type preserved", got.Config)
	}
}

func TestAssetRepo_Create_Duplicate(t *testing.T) {
	db := newTestDB(t)
	project := createTestProject(t, NewProjectRepo(db), "proj1")
	repo := NewAssetRepo(db)
	ctx := context.Background()

	first := &Asset{ProjectID: project.ID, Type: AssetTypeFile, Name: "same.txt"}
	if _, err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := &Asset{ProjectID: project.ID, Type: AssetTypeFile, Name: "same.txt"}
	if _, err := repo.Create(ctx, dup); !errors.Is(err, apperr.ErrDuplicateAsset) {
		t.Errorf("Create(duplicate) error = %v, want ErrDuplicateAsset", err)
	}

	// The same name in a different project is fine.
	other := createTestProject(t, NewProjectRepo(db), "proj2")
	okAsset := &Asset{ProjectID: other.ID, Type: AssetTypeFile, Name: "same.txt"}
	if _, err := repo.Create(ctx, okAsset); err != nil {
		t.Errorf("Create(same name, other project) error = %v", err)
	}
}

func TestAssetRepo_ListByProject(t *testing.T) {
	db := newTestDB(t)
	project := createTestProject(t, NewProjectRepo(db), "proj1")
	repo := NewAssetRepo(db)
	ctx := context.Background()

	for _, name := range []string{"a.txt", "b.txt", "c.md"} {
		if _, err := repo.Create(ctx, &Asset{ProjectID: project.ID, Type: AssetTypeFile, Name: name}); err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
	}

	assets, err := repo.ListByProject(ctx, project.ID, AssetTypeFile)
	if err != nil {
		t.Fatalf("ListByProject() error = %v", err)
	}
	if len(assets) != 3 {
		t.Errorf("ListByProject() = %d assets, want 3", len(assets))
	}

	// Unknown type filter matches nothing.
	none, err := repo.ListByProject(ctx, project.ID, AssetType("archive"))
	if err != nil {
		t.Fatalf("ListByProject(archive) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListByProject(archive) = %d assets, want 0", len(none))
	}
}

func TestAssetRepo_GetByName_NotFound(t *testing.T) {
	db := newTestDB(t)
	project := createTestProject(t, NewProjectRepo(db), "proj1")
	repo := NewAssetRepo(db)

	_, err := repo.GetByName(context.Background(), project.ID, "missing.txt")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetByName(missing) error = %v, want ErrNotFound", err)
	}
}
