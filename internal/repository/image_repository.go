package repository

import (
	"context"
	"errors"
	"time"

	"flipyard/internal/models"
)

var ErrImageNotFound = errors.New("image not found")

type ImageRepository struct {
	db DBTX
}

func NewImageRepository(db DBTX) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, image models.ListingImage) error {
	const query = `
		INSERT INTO listing_images (id, owner_id, listing_id, bucket, object_key, content_type, size_bytes, url, created_at)
		VALUES ($1, $2, NULL, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		image.ID,
		image.OwnerID,
		image.Bucket,
		image.ObjectKey,
		image.ContentType,
		image.SizeBytes,
		image.URL,
		image.CreatedAt,
	)
	return err
}

// Attach claims unattached images owned by ownerID for listingID. Every id
// must qualify, otherwise nothing is attached and ErrImageNotFound returned.
func (r *ImageRepository) Attach(ctx context.Context, listingID, ownerID string, imageIDs []string) error {
	if len(imageIDs) == 0 {
		return nil
	}
	const query = `
		WITH eligible AS (
			SELECT id FROM listing_images
			WHERE id = ANY($3) AND owner_id = $2 AND listing_id IS NULL
		)
		UPDATE listing_images SET listing_id = $1
		WHERE id IN (SELECT id FROM eligible)
		  AND (SELECT COUNT(*) FROM eligible) = $4
	`
	cmd, err := r.db.Exec(ctx, query, listingID, ownerID, imageIDs, len(imageIDs))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() != int64(len(imageIDs)) {
		return ErrImageNotFound
	}
	return nil
}

// ListOrphans returns images that were never attached and are older than cutoff.
func (r *ImageRepository) ListOrphans(ctx context.Context, cutoff time.Time, limit int) ([]models.ListingImage, error) {
	const query = `
		SELECT id, owner_id, listing_id, bucket, object_key, content_type, size_bytes, url, created_at
		FROM listing_images
		WHERE listing_id IS NULL AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ListingImage
	for rows.Next() {
		var img models.ListingImage
		if err := rows.Scan(
			&img.ID,
			&img.OwnerID,
			&img.ListingID,
			&img.Bucket,
			&img.ObjectKey,
			&img.ContentType,
			&img.SizeBytes,
			&img.URL,
			&img.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM listing_images WHERE id = $1 AND listing_id IS NULL`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
