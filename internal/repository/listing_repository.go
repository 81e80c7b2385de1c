package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"flipyard/internal/models"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingRepository struct {
	db DBTX
}

func NewListingRepository(db DBTX) *ListingRepository {
	return &ListingRepository{db: db}
}

// ListingFilter narrows the public browse query. Zero values mean "any".
type ListingFilter struct {
	Query    string
	Category string
	Tech     string
	MinPrice float64
	MaxPrice float64
	Sort     string
	Limit    int
	Offset   int
}

const listingColumns = `
	l.id, l.seller_id, l.title, l.description, l.url, l.category, l.tech_stack, l.monetization,
	l.asking_price, l.monthly_revenue, l.monthly_profit, l.monthly_visitors, l.site_age_months,
	l.reason_for_selling, l.included_assets, l.status, l.created_at, l.updated_at,
	COALESCE((SELECT array_agg(i.url ORDER BY i.created_at) FROM listing_images i WHERE i.listing_id = l.id), '{}')`

func (r *ListingRepository) Create(ctx context.Context, listing models.Listing) error {
	const query = `
		INSERT INTO listings (
			id, seller_id, title, description, url, category, tech_stack, monetization,
			asking_price, monthly_revenue, monthly_profit, monthly_visitors, site_age_months,
			reason_for_selling, included_assets, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17, $17
		)
	`
	_, err := r.db.Exec(ctx, query,
		listing.ID,
		listing.SellerID,
		listing.Title,
		listing.Description,
		listing.URL,
		listing.Category,
		nonNil(listing.TechStack),
		nonNil(listing.Monetization),
		listing.AskingPrice,
		listing.MonthlyRevenue,
		listing.MonthlyProfit,
		listing.MonthlyVisitors,
		listing.SiteAgeMonths,
		listing.ReasonForSelling,
		nonNil(listing.IncludedAssets),
		listing.Status,
		listing.CreatedAt,
	)
	return err
}

// CreateWithImages inserts listing and attaches imageIDs to it atomically.
// If any image is missing, foreign or already attached, nothing is written.
func (r *ListingRepository) CreateWithImages(ctx context.Context, listing models.Listing, imageIDs []string) error {
	return inTx(ctx, r.db, func(tx DBTX) error {
		if err := NewListingRepository(tx).Create(ctx, listing); err != nil {
			return err
		}
		return NewImageRepository(tx).Attach(ctx, listing.ID, listing.SellerID, imageIDs)
	})
}

func (r *ListingRepository) Update(ctx context.Context, listing models.Listing) error {
	const query = `
		UPDATE listings SET
			title = $2, description = $3, url = $4, category = $5, tech_stack = $6, monetization = $7,
			asking_price = $8, monthly_revenue = $9, monthly_profit = $10, monthly_visitors = $11,
			site_age_months = $12, reason_for_selling = $13, included_assets = $14, status = $15,
			updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query,
		listing.ID,
		listing.Title,
		listing.Description,
		listing.URL,
		listing.Category,
		nonNil(listing.TechStack),
		nonNil(listing.Monetization),
		listing.AskingPrice,
		listing.MonthlyRevenue,
		listing.MonthlyProfit,
		listing.MonthlyVisitors,
		listing.SiteAgeMonths,
		listing.ReasonForSelling,
		nonNil(listing.IncludedAssets),
		listing.Status,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.id = $1`
	listing, err := scanListing(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Listing{}, ErrListingNotFound
	}
	return listing, err
}

// Search returns active listings matching filter.
func (r *ListingRepository) Search(ctx context.Context, filter ListingFilter) ([]models.Listing, error) {
	var (
		where = []string{"l.status = 'active'"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, fmt.Sprintf("(l.title ILIKE %s OR l.description ILIKE %s)", p, p))
	}
	if filter.Category != "" {
		where = append(where, "l.category = "+arg(filter.Category))
	}
	if filter.Tech != "" {
		where = append(where, arg(filter.Tech)+" = ANY(l.tech_stack)")
	}
	if filter.MinPrice > 0 {
		where = append(where, "l.asking_price >= "+arg(filter.MinPrice))
	}
	if filter.MaxPrice > 0 {
		where = append(where, "l.asking_price <= "+arg(filter.MaxPrice))
	}

	order := "l.created_at DESC"
	switch filter.Sort {
	case "price_asc":
		order = "l.asking_price ASC, l.created_at DESC"
	case "price_desc":
		order = "l.asking_price DESC, l.created_at DESC"
	}

	query := `SELECT ` + listingColumns + ` FROM listings l WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY ` + order +
		` LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	return r.queryListings(ctx, query, args...)
}

func (r *ListingRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.seller_id = $1 ORDER BY l.created_at DESC`
	return r.queryListings(ctx, query, sellerID)
}

func (r *ListingRepository) queryListings(ctx context.Context, query string, args ...any) ([]models.Listing, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]models.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

func scanListing(row pgx.Row) (models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID,
		&l.SellerID,
		&l.Title,
		&l.Description,
		&l.URL,
		&l.Category,
		&l.TechStack,
		&l.Monetization,
		&l.AskingPrice,
		&l.MonthlyRevenue,
		&l.MonthlyProfit,
		&l.MonthlyVisitors,
		&l.SiteAgeMonths,
		&l.ReasonForSelling,
		&l.IncludedAssets,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.Images,
	)
	return l, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
