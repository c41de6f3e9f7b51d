package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/umalmyha/customers-mvc/internal/cache"
	"github.com/umalmyha/customers-mvc/internal/errors"
	"github.com/umalmyha/customers-mvc/internal/model"
	"github.com/umalmyha/customers-mvc/internal/repository"
	"github.com/umalmyha/customers-mvc/pkg/db/transactor"
)

// StructValidator validates struct according to its tags
type StructValidator interface {
	Validate(any) error
}

// CustomerStore represents behavior of customer store
type CustomerStore interface {
	ViewAll(context.Context) ([]*model.Customer, error)
	Save(context.Context, *model.Customer) error
	FindByID(context.Context, int64) (*model.Customer, error)
	DeleteByID(context.Context, int64) error
}

type customerService struct {
	trx           transactor.Transactor
	validator     StructValidator
	customerRps   repository.CustomerRepository
	customerCache cache.CustomerCacheRepository
}

// NewCustomerService builds customer store backed by repository and cache
func NewCustomerService(
	trx transactor.Transactor,
	validator StructValidator,
	customerRps repository.CustomerRepository,
	customerCache cache.CustomerCacheRepository,
) CustomerStore {
	return &customerService{
		trx:           trx,
		validator:     validator,
		customerRps:   customerRps,
		customerCache: customerCache,
	}
}

func (s *customerService) ViewAll(ctx context.Context) ([]*model.Customer, error) {
	return s.customerRps.FindAll(ctx)
}

// Save creates customer without identifier, otherwise updates it or creates with provided identifier.
// Cached entry is evicted only after changes are committed.
func (s *customerService) Save(ctx context.Context, c *model.Customer) error {
	if err := s.validator.Validate(c); err != nil {
		return err
	}

	isNew := c.IsNew()
	err := s.trx.WithinTransaction(ctx, func(ctx context.Context) error {
		if isNew {
			return s.customerRps.Create(ctx, c)
		}

		updated, err := s.customerRps.Update(ctx, c)
		if err != nil {
			return err
		}

		if !updated {
			return s.customerRps.Create(ctx, c)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if isNew {
		return nil
	}
	return s.customerCache.DeleteByID(ctx, c.ID)
}

func (s *customerService) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := s.customerCache.FindByID(ctx, id)
	if err != nil {
		logrus.Warnf("failed to read customer %d from cache - %v", id, err)
	}

	if c != nil {
		return c, nil
	}

	c, err = s.customerRps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c == nil {
		return nil, errors.CustomerNotFound(id)
	}

	if err := s.customerCache.Create(ctx, c); err != nil {
		logrus.Warnf("failed to cache customer %d - %v", id, err)
	}
	return c, nil
}

func (s *customerService) DeleteByID(ctx context.Context, id int64) error {
	if err := s.customerRps.DeleteByID(ctx, id); err != nil {
		return err
	}
	return s.customerCache.DeleteByID(ctx, id)
}
