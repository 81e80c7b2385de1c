package models

import "time"

type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusArchived ListingStatus = "archived"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusActive, ListingStatusSold, ListingStatusArchived:
		return true
	}
	return false
}

type Listing struct {
	ID               string
	SellerID         string
	Title            string
	Description      string
	URL              string
	Category         string
	TechStack        []string
	Monetization     []string
	AskingPrice      float64
	MonthlyRevenue   float64
	MonthlyProfit    float64
	MonthlyVisitors  int64
	SiteAgeMonths    int
	ReasonForSelling string
	IncludedAssets   []string
	Status           ListingStatus
	Images           []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Inquiry struct {
	ID           string
	ListingID    string
	ListingTitle string
	BuyerID      *string
	BuyerName    string
	BuyerEmail   string
	Message      string
	ClientIP     string
	CreatedAt    time.Time
}

// ListingImage is an uploaded object; ListingID stays nil until a listing
// claims it.
type ListingImage struct {
	ID          string
	OwnerID     string
	ListingID   *string
	Bucket      string
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	URL         string
	CreatedAt   time.Time
}
