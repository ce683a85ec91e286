// Package storage saves uploaded logo images to the configured disk.
package storage

import (
	"context"
	"fmt"

	"github.com/GTDGit/pricelist_api/internal/config"
)

// Disk stores files under slash-separated relative paths such as
// "logos/3f2a9c1e.png".
type Disk interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
	// URL is the public location stored alongside the logo row.
	URL(path string) string
}

// New returns the disk selected by cfg.Driver.
func New(ctx context.Context, cfg *config.StorageConfig) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalDisk(cfg.LocalRoot, cfg.PublicPath)
	case "s3":
		return NewS3Disk(ctx, &cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
