package storage

import "time"

// AssetType enumerates the kinds of assets a project can own.
type AssetType string

// AssetTypeFile is an uploaded file asset.
const AssetTypeFile AssetType = "file"

// Project is one isolated tenant of the service. It is created lazily on
// first reference and owns its assets, chunks and vector collection.
type Project struct {
	ID        int64  // Database-assigned id
	ProjectID string // Caller-supplied identifier, alphanumeric
	CreatedAt time.Time
}

// Asset represents one ingested file. Immutable after creation.
type Asset struct {
	ID        int64
	ProjectID int64          // Foreign key to projects.id
	Type      AssetType
	Name      string         // Storage-layer file identifier, unique per project
	Size      int64          // Size in bytes
	Config    map[string]any // Opaque per-asset configuration
	CreatedAt time.Time
}

// DataChunk is a unit of retrievable text derived from an asset.
type DataChunk struct {
	ID        int64
	ProjectID int64          // Foreign key to projects.id
	AssetID   int64          // Foreign key to assets.id
	Text      string         // Non-empty chunk text
	Metadata  map[string]any // Key/value mapping carried from the source
	Order     int            // 1-based position within the source asset
}
