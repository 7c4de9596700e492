package models

import "github.com/minshop/minshop-backend/pkg/store"

// Review is a buyer's rating of a product. Reviews are append-only; adding
// one triggers the product's averageRating/reviewCount recompute.
type Review struct {
	store.Meta
	ProductID string `json:"productId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}
