package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"flipyard/internal/apperr"
	"flipyard/internal/ids"
	"flipyard/internal/models"
	"flipyard/internal/notify"
	"flipyard/internal/ratelimit"
	"flipyard/internal/repository"
)

type InquiryStore interface {
	Create(ctx context.Context, inquiry models.Inquiry) error
	ListForSeller(ctx context.Context, sellerID string, limit, offset int) ([]models.Inquiry, error)
}

type ListingReader interface {
	GetByID(ctx context.Context, id string) (models.Listing, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

type InquiryService struct {
	inquiries InquiryStore
	listings  ListingReader
	users     UserReader
	limiter   ratelimit.Limiter
	notifier  notify.Notifier
	baseURL   string
	log       zerolog.Logger
	now       func() time.Time
}

// NewInquiryService builds the contact-seller service. Without a notifier
// every inquiry fails with a configuration error.
func NewInquiryService(
	inquiries InquiryStore,
	listings ListingReader,
	users UserReader,
	limiter ratelimit.Limiter,
	notifier notify.Notifier,
	baseURL string,
	log zerolog.Logger,
) *InquiryService {
	return &InquiryService{
		inquiries: inquiries,
		listings:  listings,
		users:     users,
		limiter:   limiter,
		notifier:  notifier,
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       log,
		now:       time.Now,
	}
}

type InquiryInput struct {
	ListingID string
	Name      string
	Email     string
	Message   string
	ClientIP  string
	// Buyer is the signed-in caller, if any.
	Buyer *models.User
}

func (s *InquiryService) Submit(ctx context.Context, input InquiryInput) (models.Inquiry, error) {
	if s.notifier == nil {
		return models.Inquiry{}, apperr.Configuration("email is not configured")
	}

	allowed, err := s.limiter.Allow(ctx, input.ClientIP)
	if err != nil {
		return models.Inquiry{}, fmt.Errorf("rate limit: %w", err)
	}
	if !allowed {
		return models.Inquiry{}, apperr.RateLimited("too many inquiries, try again later")
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	message := strings.TrimSpace(input.Message)
	if n := runeLen(name); n < 1 || n > 100 {
		return models.Inquiry{}, apperr.Validation("name must be 1-100 characters")
	}
	if !validEmail(email) {
		return models.Inquiry{}, apperr.Validation("a valid email is required")
	}
	if n := runeLen(message); n < 10 || n > 5000 {
		return models.Inquiry{}, apperr.Validation("message must be 10-5000 characters")
	}

	listing, err := s.listings.GetByID(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return models.Inquiry{}, apperr.NotFound("listing not found")
		}
		return models.Inquiry{}, err
	}
	if listing.Status != models.ListingStatusActive {
		return models.Inquiry{}, apperr.NotFound("listing not found")
	}

	var buyerID *string
	if input.Buyer != nil {
		if input.Buyer.ID == listing.SellerID {
			return models.Inquiry{}, apperr.Validation("you cannot inquire about your own listing")
		}
		buyerID = &input.Buyer.ID
	}

	seller, err := s.users.GetByID(ctx, listing.SellerID)
	if err != nil {
		return models.Inquiry{}, fmt.Errorf("load seller: %w", err)
	}

	inquiry := models.Inquiry{
		ID:           ids.New(),
		ListingID:    listing.ID,
		ListingTitle: listing.Title,
		BuyerID:      buyerID,
		BuyerName:    name,
		BuyerEmail:   email,
		Message:      message,
		ClientIP:     input.ClientIP,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return models.Inquiry{}, fmt.Errorf("store inquiry: %w", err)
	}

	err = s.notifier.SendInquiry(ctx, notify.InquiryEmail{
		SellerEmail:  seller.Email,
		ListingTitle: listing.Title,
		ListingURL:   s.baseURL + "/listings/" + listing.ID,
		BuyerName:    name,
		BuyerEmail:   email,
		Message:      message,
	})
	if err != nil {
		s.log.Error().Err(err).Str("inquiry_id", inquiry.ID).Msg("queue inquiry email failed")
	}

	return inquiry, nil
}

// ListForSeller backs the seller dashboard.
func (s *InquiryService) ListForSeller(ctx context.Context, sellerID string, page, perPage int) ([]models.Inquiry, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return s.inquiries.ListForSeller(ctx, sellerID, perPage, (page-1)*perPage)
}
