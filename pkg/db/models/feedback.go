package models

import "github.com/minshop/minshop-backend/pkg/store"

// Feedback is a visitor-submitted note from the public feedback form.
type Feedback struct {
	store.Meta
	Name    string `json:"name"`
	Email   string `json:"email"`
	Content string `json:"content"`
}
