package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/angelmondragon/wholesale-storefront/internal/catalog"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

const lockStripes = 64

// Service mutates session carts. Every call loads, changes and saves the
// whole cart while holding that session's lock.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Summary(ctx context.Context, sessionID string) (*Summary, error)
	AddItem(ctx context.Context, sessionID string, product catalog.Product, qty int, mode enums.PriceMode) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID int) (*Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID, qty int) (*Cart, error)
	UpdatePriceMode(ctx context.Context, sessionID string, productID int, mode enums.PriceMode) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
	TotalItems(ctx context.Context, sessionID string) (int, error)
}

type service struct {
	storage Storage
	logg    *logger.Logger
	locks   [lockStripes]sync.Mutex
}

// NewService builds a cart service over the provided storage backend.
func NewService(storage Storage, logg *logger.Logger) (Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	return &service{storage: storage, logg: logg}, nil
}

func (s *service) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}
	return s.load(ctx, sessionID)
}

func (s *service) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(c.Lines)
	return &summary, nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, product catalog.Product, qty int, mode enums.PriceMode) (*Cart, error) {
	if qty < 1 || qty > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", MaxLineQuantity))
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price mode must be single or bulk")
	}
	if product.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		if existing, ok := c.Line(product.ID); ok && existing.Quantity+qty > MaxLineQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line quantity cannot exceed %d", MaxLineQuantity))
		}
		c.Add(product, qty, mode)
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID int) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.Remove(productID)
		return nil
	})
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID string, productID, qty int) (*Cart, error) {
	if qty > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed %d", MaxLineQuantity))
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		if !c.UpdateQuantity(productID, qty) && qty > 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil
	})
}

func (s *service) UpdatePriceMode(ctx context.Context, sessionID string, productID int, mode enums.PriceMode) (*Cart, error) {
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price mode must be single or bulk")
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		if !c.UpdatePriceMode(productID, mode) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := validateSession(sessionID); err != nil {
		return err
	}
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()
	if err := s.storage.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) TotalItems(ctx context.Context, sessionID string) (int, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.TotalItems(), nil
}

func (s *service) mutate(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// load treats an unreadable payload as an empty cart.
func (s *service) load(ctx context.Context, sessionID string) (*Cart, error) {
	payload, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	c := &Cart{Lines: []Line{}}
	if len(payload) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(payload, &c.Lines); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.payload_discarded")
		}
		return &Cart{Lines: []Line{}}, nil
	}
	return c, nil
}

func (s *service) save(ctx context.Context, sessionID string, c *Cart) error {
	if len(c.Lines) == 0 {
		if err := s.storage.Delete(ctx, sessionID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
		c.Lines = []Line{}
		return nil
	}
	payload, err := json.Marshal(c.Lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.storage.Save(ctx, sessionID, payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func validateSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return nil
}
