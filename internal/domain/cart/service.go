package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/floramart/internal/domain/catalog"
)

// Service implements cart operations on top of the repository and the
// catalog read model.
type Service struct {
	carts   Repository
	catalog catalog.Repository
	now     func() time.Time
}

// NewService creates a cart Service.
func NewService(carts Repository, cat catalog.Repository) *Service {
	return &Service{carts: carts, catalog: cat, now: time.Now}
}

// Get returns the user's cart together with its computed totals.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, Totals, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, Totals{}, errors.Wrap(err, "get cart")
	}
	return c, Aggregate(c.Items), nil
}

// AddItem puts quantity units of the variant into the user's cart,
// snapshotting the variant's current price. Adding a variant that is already
// in the cart replaces the line with the new quantity and a fresh price.
func (s *Service) AddItem(ctx context.Context, userID, variantID string, quantity int) (*Cart, Totals, error) {
	if quantity <= 0 {
		return nil, Totals{}, ErrInvalidQuantity
	}

	v, err := s.catalog.GetVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, catalog.ErrVariantNotFound) {
			return nil, Totals{}, catalog.ErrVariantNotFound
		}
		return nil, Totals{}, errors.Wrap(err, "get variant")
	}

	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, Totals{}, errors.Wrap(err, "get cart")
	}

	item := Item{
		VariantID: v.ID,
		Quantity:  quantity,
		Price:     v.Price,
		AddedAt:   s.now(),
	}
	if err := s.carts.UpsertItem(ctx, c.ID, item); err != nil {
		return nil, Totals{}, errors.Wrap(err, "save item")
	}

	return s.Get(ctx, userID)
}

// UpdateItem changes the quantity of an existing line.
func (s *Service) UpdateItem(ctx context.Context, userID, variantID string, quantity int) (*Cart, Totals, error) {
	if quantity <= 0 {
		return nil, Totals{}, ErrInvalidQuantity
	}

	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, Totals{}, errors.Wrap(err, "get cart")
	}
	if err := s.carts.UpdateQuantity(ctx, c.ID, variantID, quantity); err != nil {
		return nil, Totals{}, err
	}

	return s.Get(ctx, userID)
}

// RemoveItem deletes a line from the user's cart.
func (s *Service) RemoveItem(ctx context.Context, userID, variantID string) (*Cart, Totals, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, Totals{}, errors.Wrap(err, "get cart")
	}
	if err := s.carts.RemoveItem(ctx, c.ID, variantID); err != nil {
		return nil, Totals{}, err
	}

	return s.Get(ctx, userID)
}
