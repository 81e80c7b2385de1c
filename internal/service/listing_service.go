package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"flipyard/internal/apperr"
	"flipyard/internal/ids"
	"flipyard/internal/inference"
	"flipyard/internal/models"
	"flipyard/internal/repository"
)

const (
	MaxListingImages = 8
	DefaultPerPage   = 20
	MaxPerPage       = 50
)

type ListingStore interface {
	CreateWithImages(ctx context.Context, listing models.Listing, imageIDs []string) error
	Update(ctx context.Context, listing models.Listing) error
	GetByID(ctx context.Context, id string) (models.Listing, error)
	Search(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error)
}

type ListingService struct {
	listings ListingStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewListingService(listings ListingStore, log zerolog.Logger) *ListingService {
	return &ListingService{listings: listings, log: log, now: time.Now}
}

// ListingInput carries every editable listing field. Update applies only the
// non-nil ones.
type ListingInput struct {
	Title            *string
	Description      *string
	URL              *string
	Category         *string
	TechStack        []string
	Monetization     []string
	AskingPrice      *float64
	MonthlyRevenue   *float64
	MonthlyProfit    *float64
	MonthlyVisitors  *int64
	SiteAgeMonths    *int
	ReasonForSelling *string
	IncludedAssets   []string
	Status           *models.ListingStatus
	ImageIDs         []string
}

func (s *ListingService) Create(ctx context.Context, sellerID string, input ListingInput) (models.Listing, error) {
	if input.Title == nil || input.Description == nil || input.URL == nil || input.Category == nil || input.AskingPrice == nil {
		return models.Listing{}, apperr.Validation("title, description, url, category and askingPrice are required")
	}
	if len(input.ImageIDs) > MaxListingImages {
		return models.Listing{}, apperr.Validation(fmt.Sprintf("at most %d images per listing", MaxListingImages))
	}

	now := s.now().UTC()
	listing := models.Listing{
		ID:        ids.New(),
		SellerID:  sellerID,
		Status:    models.ListingStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(&listing, input)
	listing.Status = models.ListingStatusActive

	if err := validateListing(listing); err != nil {
		return models.Listing{}, err
	}

	if err := s.listings.CreateWithImages(ctx, listing, dedupe(input.ImageIDs)); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return models.Listing{}, apperr.Validation("imageIds must reference your own unattached uploads")
		}
		return models.Listing{}, fmt.Errorf("create listing: %w", err)
	}

	s.log.Info().Str("listing_id", listing.ID).Str("seller_id", sellerID).Msg("listing created")
	return s.listings.GetByID(ctx, listing.ID)
}

// Get returns a listing visible to the public: anything but archived.
func (s *ListingService) Get(ctx context.Context, id string) (models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return models.Listing{}, apperr.NotFound("listing not found")
		}
		return models.Listing{}, err
	}
	if listing.Status == models.ListingStatusArchived {
		return models.Listing{}, apperr.NotFound("listing not found")
	}
	return listing, nil
}

// Update edits a listing owned by sellerID. Listings of other sellers are
// reported as not found.
func (s *ListingService) Update(ctx context.Context, sellerID, id string, input ListingInput) (models.Listing, error) {
	listing, err := s.owned(ctx, sellerID, id)
	if err != nil {
		return models.Listing{}, err
	}

	apply(&listing, input)
	if err := validateListing(listing); err != nil {
		return models.Listing{}, err
	}
	if err := s.listings.Update(ctx, listing); err != nil {
		return models.Listing{}, fmt.Errorf("update listing: %w", err)
	}
	return s.listings.GetByID(ctx, id)
}

// Archive soft-deletes a listing. The seller or an admin may do so.
func (s *ListingService) Archive(ctx context.Context, caller models.User, id string) error {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return apperr.NotFound("listing not found")
		}
		return err
	}
	if listing.SellerID != caller.ID && !caller.IsAdmin {
		return apperr.NotFound("listing not found")
	}
	if listing.Status == models.ListingStatusArchived {
		return nil
	}

	listing.Status = models.ListingStatusArchived
	if err := s.listings.Update(ctx, listing); err != nil {
		return fmt.Errorf("archive listing: %w", err)
	}
	s.log.Info().Str("listing_id", id).Str("by", caller.ID).Msg("listing archived")
	return nil
}

type SearchQuery struct {
	Query    string
	Category string
	Tech     string
	MinPrice float64
	MaxPrice float64
	Sort     string
	Page     int
	PerPage  int
}

type SearchResult struct {
	Items   []models.Listing
	Page    int
	PerPage int
}

func (s *ListingService) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage < 1 || q.PerPage > MaxPerPage {
		return SearchResult{}, apperr.Validation(fmt.Sprintf("perPage must be between 1 and %d", MaxPerPage))
	}
	if q.Category != "" && !inference.Category(q.Category).Valid() {
		return SearchResult{}, apperr.Validation("unknown category")
	}
	if q.MinPrice < 0 || q.MaxPrice < 0 || (q.MaxPrice > 0 && q.MinPrice > q.MaxPrice) {
		return SearchResult{}, apperr.Validation("invalid price range")
	}
	switch q.Sort {
	case "", "newest", "price_asc", "price_desc":
	default:
		return SearchResult{}, apperr.Validation("sort must be newest, price_asc or price_desc")
	}

	items, err := s.listings.Search(ctx, repository.ListingFilter{
		Query:    q.Query,
		Category: q.Category,
		Tech:     q.Tech,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Sort:     q.Sort,
		Limit:    q.PerPage,
		Offset:   (q.Page - 1) * q.PerPage,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("search listings: %w", err)
	}
	return SearchResult{Items: items, Page: q.Page, PerPage: q.PerPage}, nil
}

// ListForSeller backs the seller dashboard: all statuses, newest first.
func (s *ListingService) ListForSeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	return s.listings.ListBySeller(ctx, sellerID)
}

func (s *ListingService) owned(ctx context.Context, sellerID, id string) (models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return models.Listing{}, apperr.NotFound("listing not found")
		}
		return models.Listing{}, err
	}
	if listing.SellerID != sellerID {
		return models.Listing{}, apperr.NotFound("listing not found")
	}
	return listing, nil
}

func apply(l *models.Listing, in ListingInput) {
	if in.Title != nil {
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		l.Description = strings.TrimSpace(*in.Description)
	}
	if in.URL != nil {
		l.URL = strings.TrimSpace(*in.URL)
	}
	if in.Category != nil {
		l.Category = *in.Category
	}
	if in.TechStack != nil {
		l.TechStack = cleanList(in.TechStack)
	}
	if in.Monetization != nil {
		l.Monetization = cleanList(in.Monetization)
	}
	if in.AskingPrice != nil {
		l.AskingPrice = *in.AskingPrice
	}
	if in.MonthlyRevenue != nil {
		l.MonthlyRevenue = *in.MonthlyRevenue
	}
	if in.MonthlyProfit != nil {
		l.MonthlyProfit = *in.MonthlyProfit
	}
	if in.MonthlyVisitors != nil {
		l.MonthlyVisitors = *in.MonthlyVisitors
	}
	if in.SiteAgeMonths != nil {
		l.SiteAgeMonths = *in.SiteAgeMonths
	}
	if in.ReasonForSelling != nil {
		l.ReasonForSelling = strings.TrimSpace(*in.ReasonForSelling)
	}
	if in.IncludedAssets != nil {
		l.IncludedAssets = cleanList(in.IncludedAssets)
	}
	if in.Status != nil {
		l.Status = *in.Status
	}
}

func validateListing(l models.Listing) error {
	if n := runeLen(l.Title); n < 5 || n > 120 {
		return apperr.Validation("title must be 5-120 characters")
	}
	if runeLen(l.Description) < 20 {
		return apperr.Validation("description must be at least 20 characters")
	}
	if u, err := url.Parse(l.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return apperr.Validation("url must be an absolute http or https URL")
	}
	if !inference.Category(l.Category).Valid() {
		return apperr.Validation("unknown category")
	}
	if !finitePositive(l.AskingPrice) {
		return apperr.Validation("askingPrice must be a positive number")
	}
	if !finiteNonNegative(l.MonthlyRevenue) || !finiteNonNegative(l.MonthlyProfit) ||
		l.MonthlyVisitors < 0 || l.SiteAgeMonths < 0 {
		return apperr.Validation("metrics must not be negative")
	}
	if !l.Status.Valid() {
		return apperr.Validation("status must be active, sold or archived")
	}
	return nil
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// cleanList trims entries and drops blanks and repeats.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return cleanList(ids)
}
