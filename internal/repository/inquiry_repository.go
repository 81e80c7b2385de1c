package repository

import (
	"context"

	"flipyard/internal/models"
)

type InquiryRepository struct {
	db DBTX
}

func NewInquiryRepository(db DBTX) *InquiryRepository {
	return &InquiryRepository{db: db}
}

func (r *InquiryRepository) Create(ctx context.Context, inquiry models.Inquiry) error {
	const query = `
		INSERT INTO inquiries (id, listing_id, buyer_id, buyer_name, buyer_email, message, client_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		inquiry.ID,
		inquiry.ListingID,
		inquiry.BuyerID,
		inquiry.BuyerName,
		inquiry.BuyerEmail,
		inquiry.Message,
		inquiry.ClientIP,
		inquiry.CreatedAt,
	)
	return err
}

// ListForSeller returns inquiries on every listing owned by sellerID.
func (r *InquiryRepository) ListForSeller(ctx context.Context, sellerID string, limit, offset int) ([]models.Inquiry, error) {
	const query = `
		SELECT q.id, q.listing_id, l.title, q.buyer_id, q.buyer_name, q.buyer_email, q.message, q.client_ip, q.created_at
		FROM inquiries q
		JOIN listings l ON l.id = q.listing_id
		WHERE l.seller_id = $1
		ORDER BY q.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, sellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inquiries := make([]models.Inquiry, 0)
	for rows.Next() {
		var q models.Inquiry
		if err := rows.Scan(
			&q.ID,
			&q.ListingID,
			&q.ListingTitle,
			&q.BuyerID,
			&q.BuyerName,
			&q.BuyerEmail,
			&q.Message,
			&q.ClientIP,
			&q.CreatedAt,
		); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, q)
	}
	return inquiries, rows.Err()
}
