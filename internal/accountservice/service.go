// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/financas/ledger-api/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
type Repo interface {
	Create(ctx context.Context, name, balance string) (domain.Account, error)
	Get(ctx context.Context, id int32) (domain.Account, error)
	List(ctx context.Context, limit, offset int32) ([]domain.Account, error)
	Delete(ctx context.Context, id int32) error
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Create creates and returns an account with the given name and zero balance.
func (s *Service) Create(ctx context.Context, name string) (domain.Account, error) {
	account, err := s.repo.Create(ctx, name, "0")
	if err != nil {
		return account, err
	}

	return account, nil
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id int32) (domain.Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return account, err
	}

	return account, nil
}

// List returns the requested page of accounts.
func (s *Service) List(ctx context.Context, pageSize, pageID int32) ([]domain.Account, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	accounts, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return accounts, err
}

// Delete removes the account with the given id if no transactions reference it.
func (s *Service) Delete(ctx context.Context, id int32) error {
	return s.repo.Delete(ctx, id)
}
