package handlers

import (
	"time"

	"flipyard/internal/models"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUser(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

type adminUserResponse struct {
	userResponse
	IsBanned bool `json:"isBanned"`
}

type listingResponse struct {
	ID               string    `json:"id"`
	SellerID         string    `json:"sellerId"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	URL              string    `json:"url"`
	Category         string    `json:"category"`
	TechStack        []string  `json:"techStack"`
	Monetization     []string  `json:"monetization"`
	AskingPrice      float64   `json:"askingPrice"`
	MonthlyRevenue   float64   `json:"monthlyRevenue"`
	MonthlyProfit    float64   `json:"monthlyProfit"`
	MonthlyVisitors  int64     `json:"monthlyVisitors"`
	SiteAgeMonths    int       `json:"siteAgeMonths"`
	ReasonForSelling string    `json:"reasonForSelling"`
	IncludedAssets   []string  `json:"includedAssets"`
	Status           string    `json:"status"`
	Images           []string  `json:"images"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toListing(l models.Listing) listingResponse {
	return listingResponse{
		ID:               l.ID,
		SellerID:         l.SellerID,
		Title:            l.Title,
		Description:      l.Description,
		URL:              l.URL,
		Category:         l.Category,
		TechStack:        orEmpty(l.TechStack),
		Monetization:     orEmpty(l.Monetization),
		AskingPrice:      l.AskingPrice,
		MonthlyRevenue:   l.MonthlyRevenue,
		MonthlyProfit:    l.MonthlyProfit,
		MonthlyVisitors:  l.MonthlyVisitors,
		SiteAgeMonths:    l.SiteAgeMonths,
		ReasonForSelling: l.ReasonForSelling,
		IncludedAssets:   orEmpty(l.IncludedAssets),
		Status:           string(l.Status),
		Images:           orEmpty(l.Images),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func toListings(ls []models.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, toListing(l))
	}
	return out
}

type inquiryResponse struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listingId"`
	ListingTitle string    `json:"listingTitle,omitempty"`
	BuyerName    string    `json:"buyerName"`
	BuyerEmail   string    `json:"buyerEmail"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toInquiry(q models.Inquiry) inquiryResponse {
	return inquiryResponse{
		ID:           q.ID,
		ListingID:    q.ListingID,
		ListingTitle: q.ListingTitle,
		BuyerName:    q.BuyerName,
		BuyerEmail:   q.BuyerEmail,
		Message:      q.Message,
		CreatedAt:    q.CreatedAt,
	}
}

type imageResponse struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
