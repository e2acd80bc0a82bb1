package product

import (
	"context"
	"fmt"
	"time"

	"shopdesk/internal/core/id"
	"shopdesk/internal/core/tx"
)

// Service provides product catalog business logic.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, ownerID, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, ownerID, productID)
}

// Update validates and persists changes.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a product.
func (s *Service) Delete(ctx context.Context, ownerID, productID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, ownerID, productID, true)
	})
}

// AdjustStock applies a relative stock change.
func (s *Service) AdjustStock(ctx context.Context, ownerID, productID id.ID, delta int) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.AdjustStock(ctx, ownerID, productID, delta)
	})
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, ownerID id.ID, filter ListFilter) ([]Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, ownerID, filter)
}
