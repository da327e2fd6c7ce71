package domain

import "context"

// AssetRef points at a stored binary asset (event image, profile picture).
type AssetRef struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// AssetUpload carries the raw bytes of an asset to be stored.
type AssetUpload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// BlobStore defines the contract for binary asset storage (infrastructure port).
// Delete is idempotent: deleting a missing key is not an error.
type BlobStore interface {
	Upload(ctx context.Context, up *AssetUpload, pathPrefix, ownerID string) (*AssetRef, error)
	Delete(ctx context.Context, key string) error
}
