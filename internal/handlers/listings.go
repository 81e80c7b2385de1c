package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flipyard/internal/models"
	"flipyard/internal/service"
)

// listingRequest mirrors service.ListingInput; absent fields stay nil so a
// PATCH only touches what was sent.
type listingRequest struct {
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	URL              *string  `json:"url"`
	Category         *string  `json:"category"`
	TechStack        []string `json:"techStack"`
	Monetization     []string `json:"monetization"`
	AskingPrice      *float64 `json:"askingPrice"`
	MonthlyRevenue   *float64 `json:"monthlyRevenue"`
	MonthlyProfit    *float64 `json:"monthlyProfit"`
	MonthlyVisitors  *int64   `json:"monthlyVisitors"`
	SiteAgeMonths    *int     `json:"siteAgeMonths"`
	ReasonForSelling *string  `json:"reasonForSelling"`
	IncludedAssets   []string `json:"includedAssets"`
	Status           *string  `json:"status"`
	ImageIDs         []string `json:"imageIds"`
}

func (r listingRequest) input() service.ListingInput {
	in := service.ListingInput{
		Title:            r.Title,
		Description:      r.Description,
		URL:              r.URL,
		Category:         r.Category,
		TechStack:        r.TechStack,
		Monetization:     r.Monetization,
		AskingPrice:      r.AskingPrice,
		MonthlyRevenue:   r.MonthlyRevenue,
		MonthlyProfit:    r.MonthlyProfit,
		MonthlyVisitors:  r.MonthlyVisitors,
		SiteAgeMonths:    r.SiteAgeMonths,
		ReasonForSelling: r.ReasonForSelling,
		IncludedAssets:   r.IncludedAssets,
		ImageIDs:         r.ImageIDs,
	}
	if r.Status != nil {
		status := models.ListingStatus(*r.Status)
		in.Status = &status
	}
	return in
}

func (h HandlerSet) SearchListings(c *gin.Context) {
	page, okPage := queryInt(c, "page", 1)
	perPage, okPer := queryInt(c, "perPage", 0)
	minPrice, okMin := queryFloat(c, "minPrice")
	maxPrice, okMax := queryFloat(c, "maxPrice")
	if !okPage || !okPer || !okMin || !okMax {
		badRequest(c, "invalid query parameters")
		return
	}

	result, err := h.listings.Search(c.Request.Context(), service.SearchQuery{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Tech:     c.Query("tech"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     c.Query("sort"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":   toListings(result.Items),
		"page":    result.Page,
		"perPage": result.PerPage,
	})
}

func (h HandlerSet) GetListing(c *gin.Context) {
	listing, err := h.listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toListing(listing))
}

func (h HandlerSet) CreateListing(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), mustUser(c).ID, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toListing(listing))
}

func (h HandlerSet) UpdateListing(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	listing, err := h.listings.Update(c.Request.Context(), mustUser(c).ID, c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toListing(listing))
}

func (h HandlerSet) ArchiveListing(c *gin.Context) {
	if err := h.listings.Archive(c.Request.Context(), mustUser(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	ok(c)
}
