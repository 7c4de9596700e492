package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minshop/minshop-backend/pkg/config"
	"github.com/minshop/minshop-backend/pkg/db/models"
	"github.com/minshop/minshop-backend/pkg/enums"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/store"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (models.User, bool, error)
	Update(ctx context.Context, id string, apply func(*models.User)) (models.User, error)
}

type orderStore interface {
	Find(ctx context.Context, pred func(models.Order) bool) (models.Order, bool, error)
	Filter(ctx context.Context, pred func(models.Order) bool) ([]models.Order, error)
	Insert(ctx context.Context, order models.Order) error
	Update(ctx context.Context, id string, apply func(*models.Order)) (models.Order, error)
}

// Service converts selected cart lines into durable orders.
type Service interface {
	Place(ctx context.Context, userID string, input PlaceInput) (*Receipt, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ReconcileCarts(ctx context.Context) (int, error)
}

type service struct {
	users  userStore
	orders orderStore
	cfg    config.CheckoutConfig
	now    func() time.Time
}

// NewService builds the order workflow on top of the user and order collections.
func NewService(users userStore, orders orderStore, cfg config.CheckoutConfig) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("users store required")
	}
	if orders == nil {
		return nil, fmt.Errorf("orders store required")
	}
	return &service{users: users, orders: orders, cfg: cfg, now: time.Now}, nil
}

// PlaceInput captures one checkout request. RequestID is the client-supplied
// idempotency key; retries with the same id return the original order.
type PlaceInput struct {
	Address        string
	PaymentMethod  string
	DeliveryMethod enums.DeliveryMethod
	Notes          string
	RequestID      string
}

// Receipt is what the storefront needs to show after checkout.
type Receipt struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// Place loads the user's selected cart lines, computes totals, persists an
// immutable order, and empties the cart. Persisting the order and clearing
// the cart are treated as one logical transaction: the order carries a
// CartCleared marker so an interrupted clear is finished by a retry with the
// same RequestID or by the startup reconcile pass.
func (s *service) Place(ctx context.Context, userID string, input PlaceInput) (*Receipt, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Address == "" || input.PaymentMethod == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address and payment method are required")
	}
	delivery := input.DeliveryMethod
	if delivery == "" {
		delivery = enums.DeliveryMethodStandard
	}
	if !delivery.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery method %q", input.DeliveryMethod))
	}

	if input.RequestID != "" {
		existing, found, err := s.orders.Find(ctx, func(o models.Order) bool {
			return o.UserID == userID && o.RequestID == input.RequestID
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency key")
		}
		if found {
			if err := s.finishCartClear(ctx, existing); err != nil {
				return nil, err
			}
			return &Receipt{OrderID: existing.ID, OrderNumber: existing.OrderNumber}, nil
		}
	}

	user, found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	selected := selectedLines(user.Cart)
	if len(selected) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	now := s.now().UTC()
	order := models.Order{
		Meta:            store.Meta{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		OrderNumber:     newOrderNumber(now),
		RequestID:       input.RequestID,
		UserID:          user.ID,
		UserName:        user.Name,
		Items:           snapshotItems(selected),
		ShippingAddress: input.Address,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   enums.PaymentStatusPending,
		Amount:          computeAmount(selected, delivery, s.cfg),
		DeliveryMethod:  delivery,
		DeliveryStatus:  enums.DeliveryStatusPending,
		Status:          enums.OrderStatusPending,
		Notes:           input.Notes,
		CartCleared:     false,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	if err := s.finishCartClear(ctx, order); err != nil {
		// The order is durable; the caller retries with the same RequestID
		// (or the startup reconcile pass finishes the clear).
		return nil, err
	}

	return &Receipt{OrderID: order.ID, OrderNumber: order.OrderNumber}, nil
}

// ListByUser returns the user's orders in storage order.
func (s *service) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.Filter(ctx, func(o models.Order) bool { return o.UserID == userID })
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	return orders, nil
}

// ReconcileCarts finishes the cart-clear half of any order that was persisted
// without its cart being emptied, which happens when the process dies between
// the two writes. It runs at startup and is idempotent.
func (s *service) ReconcileCarts(ctx context.Context) (int, error) {
	pending, err := s.orders.Filter(ctx, func(o models.Order) bool { return !o.CartCleared })
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan orders")
	}

	reconciled := 0
	for _, order := range pending {
		if err := s.finishCartClear(ctx, order); err != nil {
			return reconciled, err
		}
		reconciled++
	}
	return reconciled, nil
}

// finishCartClear empties the owning user's cart (when the user still
// exists) and marks the order as cleared. Both steps tolerate repetition.
func (s *service) finishCartClear(ctx context.Context, order models.Order) error {
	if order.CartCleared {
		return nil
	}

	if _, err := s.users.Update(ctx, order.UserID, func(u *models.User) {
		u.Cart = []models.CartLine{}
	}); err != nil && !errors.Is(err, store.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}

	if _, err := s.orders.Update(ctx, order.ID, func(o *models.Order) {
		o.CartCleared = true
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark cart cleared")
	}
	return nil
}

// selectedLines keeps the lines whose selected flag is set or absent.
func selectedLines(cart []models.CartLine) []models.CartLine {
	selected := make([]models.CartLine, 0, len(cart))
	for _, line := range cart {
		if line.IsSelected() {
			selected = append(selected, line)
		}
	}
	return selected
}

func snapshotItems(lines []models.CartLine) []models.OrderItem {
	items := make([]models.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = models.OrderItem{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Price:          line.Price,
			Quantity:       line.Quantity,
			Specifications: line.Specs.Clone(),
		}
	}
	return items
}

func computeAmount(lines []models.CartLine, delivery enums.DeliveryMethod, cfg config.CheckoutConfig) models.Amount {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shippingFee := decimal.Zero
	if delivery == enums.DeliveryMethodExpress {
		shippingFee = decimal.NewFromInt(int64(cfg.ExpressShippingFee))
	}

	discount := decimal.Zero
	return models.Amount{
		Subtotal:    subtotal,
		ShippingFee: shippingFee,
		Discount:    discount,
		Total:       subtotal.Sub(discount).Add(shippingFee),
	}
}
