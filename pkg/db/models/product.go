package models

import (
	"github.com/shopspring/decimal"

	"github.com/minshop/minshop-backend/pkg/enums"
	"github.com/minshop/minshop-backend/pkg/store"
	"github.com/minshop/minshop-backend/pkg/types"
)

// Image is one product photo.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Product is a listing in the products collection. AverageRating and
// ReviewCount are derived from the reviews collection and may only be
// touched by the review workflow.
type Product struct {
	store.Meta
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Price          decimal.Decimal     `json:"price"`
	OriginalPrice  decimal.Decimal     `json:"originalPrice"`
	Category       string              `json:"category"`
	Images         []Image             `json:"images"`
	Stock          int                 `json:"stock"`
	Specifications types.Specs         `json:"specifications"`
	SellerID       string              `json:"sellerId"`
	SellerName     string              `json:"sellerName"`
	Status         enums.ProductStatus `json:"status"`
	SalesCount     int                 `json:"salesCount"`
	AverageRating  float64             `json:"averageRating"`
	ReviewCount    int                 `json:"reviewCount"`
	Tags           []string            `json:"tags"`
	IsFeatured     bool                `json:"isFeatured"`
}

// FirstImageURL returns the primary image, or empty when none exists.
func (p Product) FirstImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
