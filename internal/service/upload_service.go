package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog"

	"flipyard/internal/apperr"
	"flipyard/internal/ids"
	"flipyard/internal/media/sniffer"
	"flipyard/internal/models"
)

type ImageStore interface {
	Create(ctx context.Context, image models.ListingImage) error
}

type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

type UploadService struct {
	images   ImageStore
	store    ObjectStore
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
}

// NewUploadService wires listing image uploads. store is nil when object
// storage is not configured.
func NewUploadService(images ImageStore, store ObjectStore, maxBytes int64, log zerolog.Logger) *UploadService {
	return &UploadService{
		images:   images,
		store:    store,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

type UploadInput struct {
	OwnerID     string
	File        io.Reader
	ContentType string
}

// Upload stores an image that a listing can claim later. Until then it is
// an orphan and gets removed by the cleanup task.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (models.ListingImage, error) {
	if s.store == nil {
		return models.ListingImage{}, apperr.Configuration("image storage is not configured")
	}
	if input.File == nil {
		return models.ListingImage{}, apperr.Validation("file is required")
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxBytes+1))
	if err != nil {
		return models.ListingImage{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return models.ListingImage{}, apperr.Validation("file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return models.ListingImage{}, apperr.Validation(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	head := data
	if len(head) > sniffer.HeadSize {
		head = head[:sniffer.HeadSize]
	}
	kind, err := sniffer.DetectHead(head)
	if err != nil {
		return models.ListingImage{}, apperr.Validation("only JPEG, PNG, GIF and WEBP images are allowed")
	}
	if !kind.Agrees(input.ContentType) {
		return models.ListingImage{}, apperr.Validation(fmt.Sprintf("content type mismatch: declared %s, actual %s",
			sniffer.NormalizeMIME(input.ContentType), kind.MIME))
	}

	now := s.now().UTC()
	imageID := ids.New()
	objectKey := path.Join("listings", now.Format("2006/01/02"), imageID+"."+kind.Ext())

	if err := s.store.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), kind.MIME); err != nil {
		return models.ListingImage{}, fmt.Errorf("put object: %w", err)
	}

	image := models.ListingImage{
		ID:          imageID,
		OwnerID:     input.OwnerID,
		Bucket:      s.store.Bucket(),
		ObjectKey:   objectKey,
		ContentType: kind.MIME,
		SizeBytes:   int64(len(data)),
		URL:         s.store.PublicURL(objectKey),
		CreatedAt:   now,
	}
	if err := s.images.Create(ctx, image); err != nil {
		if rmErr := s.store.Remove(ctx, objectKey); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("object_key", objectKey).Msg("remove unrecorded object failed")
		}
		return models.ListingImage{}, fmt.Errorf("save image: %w", err)
	}

	s.log.Info().Str("image_id", imageID).Str("owner_id", input.OwnerID).Int("bytes", len(data)).Msg("image uploaded")
	return image, nil
}
