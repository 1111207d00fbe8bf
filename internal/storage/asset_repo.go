package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"docrag/internal/apperr"
)

// AssetStore defines the interface for asset record operations.
type AssetStore interface {
	// Create inserts the asset and assigns its database id. Returns
	// apperr.ErrDuplicateAsset when (project, name) already exists.
	Create(ctx context.Context, asset *Asset) (*Asset, error)
	// ListByProject returns a project's assets, optionally filtered by type.
	ListByProject(ctx context.Context, projectID int64, assetType AssetType) ([]Asset, error)
	// GetByName returns the asset or apperr.ErrNotFound.
	GetByName(ctx context.Context, projectID int64, name string) (*Asset, error)
}

// AssetRepo provides methods for asset operations backed by SQLite.
// It implements the AssetStore interface.
type AssetRepo struct {
	db *sql.DB
}

// NewAssetRepo creates a new AssetRepo.
func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{db: db}
}

// Create inserts the asset record. Assets are never mutated after creation.
func (r *AssetRepo) Create(ctx context.Context, asset *Asset) (*Asset, error) {
	configJSON, err := marshalJSONMap(asset.Config)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "failed to encode asset config: %v", err)
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO assets (project_id, asset_type, asset_name, asset_size, asset_config) VALUES (?, ?, ?, ?, ?)",
		asset.ProjectID, asset.Type, asset.Name, asset.Size, configJSON,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, apperr.Wrapf(apperr.ErrDuplicateAsset, "asset %q already exists in project %d", asset.Name, asset.ProjectID)
		}
		return nil, apperr.Wrapf(apperr.ErrStorage, "failed to insert asset: %v", err)
	}

	asset.ID, err = res.LastInsertId()
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "failed to read asset id: %v", err)
	}
	return asset, nil
}

// ListByProject returns a project's assets. An empty assetType matches all
// types. Order is unspecified.
func (r *AssetRepo) ListByProject(ctx context.Context, projectID int64, assetType AssetType) ([]Asset, error) {
	query := "SELECT id, project_id, asset_type, asset_name, asset_size, asset_config, created_at FROM assets WHERE project_id = ?"
	args := []any{projectID}
	if assetType != "" {
		query += " AND asset_type = ?"
		args = append(args, assetType)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "failed to query assets: %v", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var assets []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "row iteration error: %v", err)
	}

	return assets, nil
}

// GetByName returns the asset identified by its storage-layer file name.
func (r *AssetRepo) GetByName(ctx context.Context, projectID int64, name string) (*Asset, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, project_id, asset_type, asset_name, asset_size, asset_config, created_at FROM assets WHERE project_id = ? AND asset_name = ?",
		projectID, name,
	)

	asset, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, apperr.Wrapf(apperr.ErrNotFound, "asset %q in project %d", name, projectID)
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*Asset, error) {
	var (
		asset      Asset
		configJSON sql.NullString
	)
	err := row.Scan(&asset.ID, &asset.ProjectID, &asset.Type, &asset.Name, &asset.Size, &configJSON, &asset.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "failed to scan asset: %v", err)
	}

	if configJSON.Valid && configJSON.String != "" {
		if err := json.Unmarshal([]byte(configJSON.String), &asset.Config); err != nil {
			return nil, apperr.Wrapf(apperr.ErrStorage, "failed to decode asset config: %v", err)
		}
	}
	return &asset, nil
}

func marshalJSONMap(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
