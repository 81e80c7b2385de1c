package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipyard/internal/apperr"
	"flipyard/internal/models"
)

func ptr[T any](v T) *T { return &v }

func validListingInput() ListingInput {
	return ListingInput{
		Title:        ptr("Acme Shop for Sale"),
		Description:  ptr("Handmade candles store with loyal repeat customers."),
		URL:          ptr("https://acme.example"),
		Category:     ptr("ecommerce"),
		TechStack:    []string{"Shopify", " Shopify ", ""},
		Monetization: []string{"Product Sales"},
		AskingPrice:  ptr(5000.0),
	}
}

func TestListingService_Create(t *testing.T) {
	store := newFakeListings()
	store.owners["img1"] = "seller-1"
	svc := NewListingService(store, zerolog.Nop())

	in := validListingInput()
	in.ImageIDs = []string{"img1", "img1"}
	in.Status = ptr(models.ListingStatusSold)

	listing, err := svc.Create(context.Background(), "seller-1", in)
	require.NoError(t, err)

	assert.Equal(t, "seller-1", listing.SellerID)
	assert.Equal(t, models.ListingStatusActive, listing.Status)
	assert.Equal(t, []string{"Shopify"}, listing.TechStack)
	assert.Equal(t, []string{"https://cdn.example/img1"}, listing.Images)
	assert.Equal(t, []string{"img1"}, store.attached[listing.ID])
}

func TestListingService_Create_Validation(t *testing.T) {
	svc := NewListingService(newFakeListings(), zerolog.Nop())

	mutations := map[string]func(*ListingInput){
		"short title":     func(in *ListingInput) { in.Title = ptr("Shop") },
		"short desc":      func(in *ListingInput) { in.Description = ptr("too short") },
		"bad url":         func(in *ListingInput) { in.URL = ptr("acme.example") },
		"bad category":    func(in *ListingInput) { in.Category = ptr("casino") },
		"zero price":      func(in *ListingInput) { in.AskingPrice = ptr(0.0) },
		"negative profit": func(in *ListingInput) { in.MonthlyProfit = ptr(-1.0) },
		"missing title":   func(in *ListingInput) { in.Title = nil },
		"too many images": func(in *ListingInput) { in.ImageIDs = make([]string, MaxListingImages+1) },
	}
	for name, mutate := range mutations {
		in := validListingInput()
		mutate(&in)
		_, err := svc.Create(context.Background(), "seller-1", in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), name)
	}
}

func TestListingService_Create_ForeignImage(t *testing.T) {
	store := newFakeListings()
	store.owners["img1"] = "someone-else"
	svc := NewListingService(store, zerolog.Nop())

	in := validListingInput()
	in.ImageIDs = []string{"img1"}
	_, err := svc.Create(context.Background(), "seller-1", in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, store.rows)
}

func TestListingService_UpdateAndArchive(t *testing.T) {
	store := newFakeListings()
	svc := NewListingService(store, zerolog.Nop())
	ctx := context.Background()

	listing, err := svc.Create(ctx, "seller-1", validListingInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, "intruder", listing.ID, ListingInput{AskingPrice: ptr(1.0)})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	updated, err := svc.Update(ctx, "seller-1", listing.ID, ListingInput{
		AskingPrice: ptr(7500.0),
		Status:      ptr(models.ListingStatusSold),
	})
	require.NoError(t, err)
	assert.Equal(t, 7500.0, updated.AskingPrice)
	assert.Equal(t, models.ListingStatusSold, updated.Status)
	assert.Equal(t, listing.Title, updated.Title)

	err = svc.Archive(ctx, models.User{ID: "intruder"}, listing.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, svc.Archive(ctx, models.User{ID: "moderator", IsAdmin: true}, listing.ID))

	_, err = svc.Get(ctx, listing.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	mine, err := svc.ListForSeller(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.ListingStatusArchived, mine[0].Status)
}

func TestListingService_Search(t *testing.T) {
	store := newFakeListings()
	svc := NewListingService(store, zerolog.Nop())

	res, err := svc.Search(context.Background(), SearchQuery{Query: "candles", Page: 3, PerPage: 10, Sort: "price_desc"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page)
	assert.Equal(t, 10, res.PerPage)
	assert.Equal(t, 10, store.filter.Limit)
	assert.Equal(t, 20, store.filter.Offset)
	assert.Equal(t, "price_desc", store.filter.Sort)

	res, err = svc.Search(context.Background(), SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, DefaultPerPage, res.PerPage)

	for _, q := range []SearchQuery{
		{PerPage: 51},
		{PerPage: -1},
		{Category: "casino"},
		{Sort: "random"},
		{MinPrice: 500, MaxPrice: 100},
	} {
		_, err := svc.Search(context.Background(), q)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "%+v", q)
	}
}
