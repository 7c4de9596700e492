// Package db wires one typed store per entity kind on top of the flat-file
// collection layer. It is purely compositional: no business rules live here.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minshop/minshop-backend/pkg/config"
	"github.com/minshop/minshop-backend/pkg/db/models"
	"github.com/minshop/minshop-backend/pkg/logger"
	"github.com/minshop/minshop-backend/pkg/store"
)

// Pinger is the readiness probe surface exposed to the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client owns the data directory and one store per collection.
type Client struct {
	dir string

	Users    *store.Store[models.User]
	Products *store.Store[models.Product]
	Orders   *store.Store[models.Order]
	Reviews  *store.Store[models.Review]
	Feedback *store.Store[models.Feedback]
}

// New ensures the data directory exists and builds the collection registry.
func New(ctx context.Context, cfg config.DataConfig, logg *logger.Logger, opts ...store.Option) (*Client, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "data_dir", dir), "flat-file storage ready")
	}

	c := &Client{dir: dir}
	c.Users = collection[models.User](c, "users", opts)
	c.Products = collection[models.Product](c, "products", opts)
	c.Orders = collection[models.Order](c, "orders", opts)
	c.Reviews = collection[models.Review](c, "reviews", opts)
	c.Feedback = collection[models.Feedback](c, "feedbacks", opts)
	return c, nil
}

func collection[T store.Record](c *Client, name string, opts []store.Option) *store.Store[T] {
	return store.New[T](name, filepath.Join(c.dir, name+".json"), opts...)
}

// Dir returns the data directory backing every collection.
func (c *Client) Dir() string { return c.dir }

// Ping verifies the storage medium is reachable and writable.
func (c *Client) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	probe, err := os.CreateTemp(c.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("storage probe: %w", err)
	}
	name := probe.Name()
	if err := probe.Close(); err != nil {
		return fmt.Errorf("storage probe: %w", err)
	}
	return os.Remove(name)
}
