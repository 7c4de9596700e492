package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minshop/minshop-backend/pkg/db/models"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/store"
)

type feedbackStore interface {
	Insert(ctx context.Context, entry models.Feedback) error
}

// Service records notes from the public feedback form.
type Service interface {
	Submit(ctx context.Context, user *models.User, input SubmitInput) (*models.Feedback, error)
}

type service struct {
	feedback feedbackStore
	now      func() time.Time
}

// NewService builds the feedback sink.
func NewService(feedback feedbackStore) (Service, error) {
	if feedback == nil {
		return nil, fmt.Errorf("feedback store required")
	}
	return &service{feedback: feedback, now: time.Now}, nil
}

// SubmitInput is one feedback message. Name and email identify anonymous
// submitters; a signed-in user's account details take precedence.
type SubmitInput struct {
	Name    string
	Email   string
	Content string
}

// Submit persists the message, attributing it to the user when signed in.
func (s *service) Submit(ctx context.Context, user *models.User, input SubmitInput) (*models.Feedback, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}

	now := s.now().UTC()
	entry := models.Feedback{
		Meta:    store.Meta{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Content: content,
	}
	if user != nil {
		entry.Name = user.Name
		entry.Email = user.Email
	}

	if err := s.feedback.Insert(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist feedback")
	}
	return &entry, nil
}
