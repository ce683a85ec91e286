package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/pricelist_api/internal/models"
	"github.com/GTDGit/pricelist_api/internal/storage"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

// LogoStore is the logo side of the catalog store.
type LogoStore interface {
	ListLogos(ctx context.Context) ([]models.Logo, error)
	CreateLogo(ctx context.Context, logo *models.Logo) error
}

// LogoService stores uploaded logo images and their rows.
type LogoService struct {
	store    LogoStore
	disk     storage.Disk
	maxBytes int64
}

func NewLogoService(store LogoStore, disk storage.Disk, maxBytes int64) *LogoService {
	return &LogoService{store: store, disk: disk, maxBytes: maxBytes}
}

func (s *LogoService) ListLogos(ctx context.Context) ([]models.Logo, error) {
	return s.store.ListLogos(ctx)
}

// CreateLogo saves data under logos/ and inserts the logo row. A duplicate
// name returns utils.ErrConflict and the saved file is removed again.
func (s *LogoService) CreateLogo(ctx context.Context, name string, data []byte) (*models.Logo, error) {
	name = strings.TrimSpace(name)
	verr := &utils.ValidationError{}
	if name == "" {
		verr.Add("name", "name is required")
	}

	var mtype *mimetype.MIME
	switch {
	case len(data) == 0:
		verr.Add("logoImage", "logoImage is required")
	case int64(len(data)) > s.maxBytes:
		verr.Add("logoImage", fmt.Sprintf("logoImage must not exceed %d bytes", s.maxBytes))
	default:
		mtype = mimetype.Detect(data)
		if !strings.HasPrefix(mtype.String(), "image/") {
			verr.Add("logoImage", "logoImage must be an image")
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	path := "logos/" + uuid.NewString() + mtype.Extension()
	if err := s.disk.Put(ctx, path, data, mtype.String()); err != nil {
		return nil, fmt.Errorf("store logo file: %w: %w", utils.ErrStorageUnavailable, err)
	}

	logo := &models.Logo{Name: name, FilePath: s.disk.URL(path)}
	if err := s.store.CreateLogo(ctx, logo); err != nil {
		if delErr := s.disk.Delete(ctx, path); delErr != nil {
			log.Error().Err(delErr).Str("path", path).Msg("Failed to remove orphaned logo file")
		}
		if errors.Is(err, utils.ErrConflict) {
			return nil, fmt.Errorf("logo name %q already exists: %w", name, utils.ErrConflict)
		}
		return nil, err
	}

	log.Info().Int("logo_id", logo.ID).Str("name", logo.Name).Str("path", path).Msg("Logo created")
	return logo, nil
}
