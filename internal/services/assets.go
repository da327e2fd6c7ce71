package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventdesk/internal/domain"
)

// AssetCoordinator keeps a record's asset reference pointing at a live blob
// across the non-transactional record and blob stores. Ordering does all the
// work: upload before the record write, delete old blobs only after it.
type AssetCoordinator struct {
	blobs  domain.BlobStore
	logger *slog.Logger
}

// NewAssetCoordinator returns an AssetCoordinator over the given blob store.
func NewAssetCoordinator(blobs domain.BlobStore, logger *slog.Logger) *AssetCoordinator {
	return &AssetCoordinator{blobs: blobs, logger: logger}
}

// CreateWithAsset uploads the asset (if any) and then runs the record write
// with the resulting reference. An upload failure is logged and the record is
// written without an asset; blob storage being down must never block entity
// creation. If the record write fails after a successful upload, the blob is
// deleted best-effort and the write error is returned unchanged.
func (c *AssetCoordinator) CreateWithAsset(ctx context.Context, up *domain.AssetUpload, pathPrefix, ownerID string, write func(ref *domain.AssetRef) error) error {
	if up == nil {
		return write(nil)
	}
	ref, err := c.blobs.Upload(ctx, up, pathPrefix, ownerID)
	if err != nil {
		c.logger.WarnContext(ctx, "asset upload failed, continuing without asset",
			"prefix", pathPrefix, "owner_id", ownerID, "err", err)
		return write(nil)
	}
	if err := write(ref); err != nil {
		if delErr := c.blobs.Delete(ctx, ref.Key); delErr != nil {
			c.logger.ErrorContext(ctx, "rollback delete of uploaded asset failed",
				"key", ref.Key, "err", delErr)
		}
		return err
	}
	return nil
}

// ReplaceAsset uploads the new asset, runs the record write with the new
// reference, and only then deletes the old blob. If the record write fails
// the new blob is deleted best-effort and the old reference stays intact; if
// deleting the old blob fails after a successful swap it is only logged
// because the record is already consistent.
func (c *AssetCoordinator) ReplaceAsset(ctx context.Context, up *domain.AssetUpload, pathPrefix, ownerID string, old *domain.AssetRef, write func(ref *domain.AssetRef) error) error {
	ref, err := c.blobs.Upload(ctx, up, pathPrefix, ownerID)
	if err != nil {
		return fmt.Errorf("upload replacement asset: %w", err)
	}
	if err := write(ref); err != nil {
		if delErr := c.blobs.Delete(ctx, ref.Key); delErr != nil {
			c.logger.ErrorContext(ctx, "rollback delete of replacement asset failed",
				"key", ref.Key, "err", delErr)
		}
		return err
	}
	if old != nil && old.Key != "" {
		if err := c.blobs.Delete(ctx, old.Key); err != nil {
			c.logger.WarnContext(ctx, "delete of replaced asset failed, blob orphaned",
				"key", old.Key, "err", err)
		}
	}
	return nil
}
