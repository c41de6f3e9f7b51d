package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	cacheMocks "github.com/umalmyha/customers-mvc/internal/cache/mocks"
	customerErrors "github.com/umalmyha/customers-mvc/internal/errors"
	"github.com/umalmyha/customers-mvc/internal/model"
	rpsMocks "github.com/umalmyha/customers-mvc/internal/repository/mocks"
	"github.com/umalmyha/customers-mvc/internal/validation"
	"github.com/umalmyha/customers-mvc/pkg/db/transactor"
)

type customerTestData struct {
	ctx      context.Context
	customer *model.Customer
}

type customerServiceTestSuite struct {
	suite.Suite
	customerSvc       CustomerStore
	customerRpsMock   *rpsMocks.CustomerRepository
	customerCacheMock *cacheMocks.CustomerCacheRepository
	testData          *customerTestData
}

func (s *customerServiceTestSuite) SetupSuite() {
	s.testData = &customerTestData{
		ctx: context.Background(),
		customer: &model.Customer{
			ID:        42,
			FirstName: "John",
			LastName:  "Walls",
			Email:     "john.walls@somemal.com",
		},
	}
}

func (s *customerServiceTestSuite) SetupTest() {
	t := s.T()

	v, err := validation.English()
	s.Require().NoError(err, "failed to build validator")

	s.customerRpsMock = rpsMocks.NewCustomerRepository(t)
	s.customerCacheMock = cacheMocks.NewCustomerCacheRepository(t)
	s.customerSvc = NewCustomerService(transactor.NewNopTransactor(), v, s.customerRpsMock, s.customerCacheMock)
}

func (s *customerServiceTestSuite) TestFindByIDFromCache() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	s.customerCacheMock.On("FindByID", ctx, customer.ID).Return(customer, nil).Once()

	s.T().Log("customer must be found in cache")
	{
		c, err := s.customerSvc.FindByID(ctx, customer.ID)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal(customer, c, "cached customer must be returned")
		s.customerRpsMock.AssertNotCalled(s.T(), "FindByID", ctx, customer.ID)
	}
}

func (s *customerServiceTestSuite) TestFindByIDNotFound() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	s.customerCacheMock.On("FindByID", ctx, customer.ID).Return(nil, nil).Once()
	s.customerRpsMock.On("FindByID", ctx, customer.ID).Return(nil, nil).Once()

	s.T().Log("customer is missing in cache and in primary datasource")
	{
		c, err := s.customerSvc.FindByID(ctx, customer.ID)
		s.Assert().Error(err, "customer is missing, error must be raised")
		s.Assert().IsType(&customerErrors.EntryNotFoundErr{}, err, "error must be not found error")
		s.Assert().Nil(c, "no customer must be present but it was found")
		s.customerCacheMock.AssertNotCalled(s.T(), "Create", ctx, mock.AnythingOfType("*model.Customer"))
	}
}

func (s *customerServiceTestSuite) TestFindByIDCached() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	s.customerCacheMock.On("FindByID", ctx, customer.ID).Return(nil, nil).Once()
	s.customerRpsMock.On("FindByID", ctx, customer.ID).Return(customer, nil).Once()
	s.customerCacheMock.On("Create", ctx, customer).Return(nil).Once()

	s.T().Log("customer is not in cache, found in primary datasource and cached")
	{
		c, err := s.customerSvc.FindByID(ctx, customer.ID)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().NotNil(c, "customer must be found")
		s.customerCacheMock.AssertCalled(s.T(), "Create", ctx, mock.AnythingOfType("*model.Customer"))
	}
}

func (s *customerServiceTestSuite) TestFindByIDCacheUnavailable() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	s.customerCacheMock.On("FindByID", ctx, customer.ID).Return(nil, errors.New("cache err")).Once()
	s.customerRpsMock.On("FindByID", ctx, customer.ID).Return(customer, nil).Once()
	s.customerCacheMock.On("Create", ctx, customer).Return(errors.New("cache err")).Once()

	s.T().Log("cache failures don't prevent reading from primary datasource")
	{
		c, err := s.customerSvc.FindByID(ctx, customer.ID)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal(customer, c, "customer from primary datasource must be returned")
	}
}

func (s *customerServiceTestSuite) TestDeleteByIDCacheFailed() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	s.customerRpsMock.On("DeleteByID", ctx, customer.ID).Return(nil).Once()
	s.customerCacheMock.On("DeleteByID", ctx, customer.ID).Return(errors.New("cache err")).Once()

	s.T().Log("delete customer from cache failed")
	{
		err := s.customerSvc.DeleteByID(ctx, customer.ID)
		s.Assert().Error(err, "cache raised error - error must be raised up")
	}
}

func (s *customerServiceTestSuite) TestDeleteByIDFailed() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	s.customerRpsMock.On("DeleteByID", ctx, customer.ID).Return(errors.New("db err")).Once()

	s.T().Log("delete customer from datasource failed")
	{
		err := s.customerSvc.DeleteByID(ctx, customer.ID)
		s.Assert().Error(err, "datasource raised error - error must be raised up")
		s.customerCacheMock.AssertNotCalled(s.T(), "DeleteByID", ctx, customer.ID)
	}
}

func (s *customerServiceTestSuite) TestDeleteByIDSuccessfully() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	var calls []string
	s.customerRpsMock.On("DeleteByID", ctx, customer.ID).Run(func(mock.Arguments) {
		calls = append(calls, "repository")
	}).Return(nil).Once()
	s.customerCacheMock.On("DeleteByID", ctx, customer.ID).Run(func(mock.Arguments) {
		calls = append(calls, "cache")
	}).Return(nil).Once()

	s.T().Log("deleted successfully, cache is evicted after datasource")
	{
		err := s.customerSvc.DeleteByID(ctx, customer.ID)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal([]string{"repository", "cache"}, calls, "cache must be evicted after customer is deleted")
	}
}

func (s *customerServiceTestSuite) TestSaveNewCustomer() {
	ctx := s.testData.ctx
	newCustomer := &model.Customer{FirstName: "Henry", LastName: "Ford", Email: "henry.ford@somemail.com"}

	s.customerRpsMock.On("Create", ctx, newCustomer).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Customer).ID = 100
	}).Return(nil).Once()

	s.T().Log("customer has no id, so must be created")
	{
		err := s.customerSvc.Save(ctx, newCustomer)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal(int64(100), newCustomer.ID, "assigned id must be written back")
		s.customerRpsMock.AssertNotCalled(s.T(), "Update", ctx, mock.AnythingOfType("*model.Customer"))
		s.customerCacheMock.AssertNotCalled(s.T(), "DeleteByID", ctx, mock.AnythingOfType("int64"))
	}
}

func (s *customerServiceTestSuite) TestSaveUpdateCustomer() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	var calls []string
	s.customerRpsMock.On("Update", ctx, customer).Run(func(mock.Arguments) {
		calls = append(calls, "repository")
	}).Return(true, nil).Once()
	s.customerCacheMock.On("DeleteByID", ctx, customer.ID).Run(func(mock.Arguments) {
		calls = append(calls, "cache")
	}).Return(nil).Once()

	s.T().Log("customer is present, so must be updated")
	{
		err := s.customerSvc.Save(ctx, customer)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal([]string{"repository", "cache"}, calls, "cache must be evicted after customer is updated")
		s.customerRpsMock.AssertNotCalled(s.T(), "Create", ctx, mock.AnythingOfType("*model.Customer"))
	}
}

func (s *customerServiceTestSuite) TestSaveUpdateCustomerFailed() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	s.customerRpsMock.On("Update", ctx, customer).Return(false, errors.New("db err")).Once()

	s.T().Log("update failed, cached entry stays untouched")
	{
		err := s.customerSvc.Save(ctx, customer)
		s.Assert().Error(err, "datasource raised error - error must be raised up")
		s.customerCacheMock.AssertNotCalled(s.T(), "DeleteByID", ctx, customer.ID)
	}
}

func (s *customerServiceTestSuite) TestSaveMissingCustomerWithID() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	s.customerCacheMock.On("DeleteByID", ctx, customer.ID).Return(nil).Once()
	s.customerRpsMock.On("Update", ctx, customer).Return(false, nil).Once()
	s.customerRpsMock.On("Create", ctx, customer).Return(nil).Once()

	s.T().Log("customer has id but doesn't exist, so must be created")
	{
		err := s.customerSvc.Save(ctx, customer)
		s.Assert().NoError(err, "no error must be raised")
	}
}

func (s *customerServiceTestSuite) TestSaveInvalidCustomer() {
	ctx := s.testData.ctx
	invalid := &model.Customer{FirstName: "Henry", Email: "henry.somemail.com"}

	s.T().Log("invalid customer must be rejected before reaching datasource")
	{
		err := s.customerSvc.Save(ctx, invalid)
		s.Assert().Error(err, "customer is invalid, error must be raised")
		s.Assert().IsType(&validation.PayloadError{}, err, "error must be payload error")
		s.customerRpsMock.AssertNotCalled(s.T(), "Create", ctx, mock.AnythingOfType("*model.Customer"))
	}
}

func (s *customerServiceTestSuite) TestViewAllSuccessfully() {
	ctx := s.testData.ctx
	customer := s.testData.customer

	customers := []*model.Customer{
		customer,
	}

	s.customerRpsMock.On("FindAll", ctx).Return(customers, nil).Once()

	s.T().Log("customers must be found in data source")
	{
		all, err := s.customerSvc.ViewAll(ctx)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal(customers, all, "customers must be returned as is")
	}
}

// memoryCustomerCache keeps customers in map, so entries written during concurrent reads are observable
type memoryCustomerCache struct {
	customers map[int64]model.Customer
}

func (m *memoryCustomerCache) FindByID(_ context.Context, id int64) (*model.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memoryCustomerCache) Create(_ context.Context, c *model.Customer) error {
	if _, ok := m.customers[c.ID]; !ok {
		m.customers[c.ID] = *c
	}
	return nil
}

func (m *memoryCustomerCache) DeleteByID(_ context.Context, id int64) error {
	delete(m.customers, id)
	return nil
}

func TestCustomerServiceReadDuringWrite(t *testing.T) {
	ctx := context.Background()
	old := &model.Customer{ID: 7, FirstName: "Old", LastName: "Walls", Email: "old.walls@somemail.com"}

	v, err := validation.English()
	require.NoError(t, err, "failed to build validator")

	t.Log("customer read while it is updated must not stay cached with old values")
	{
		rpsMock := rpsMocks.NewCustomerRepository(t)
		customerCache := &memoryCustomerCache{customers: make(map[int64]model.Customer)}
		svc := NewCustomerService(transactor.NewNopTransactor(), v, rpsMock, customerCache)

		upd := &model.Customer{ID: 7, FirstName: "New", LastName: "Walls", Email: "new.walls@somemail.com"}
		rpsMock.On("FindByID", ctx, int64(7)).Return(old, nil).Once()
		rpsMock.On("Update", ctx, upd).Run(func(mock.Arguments) {
			_, err := svc.FindByID(ctx, 7)
			require.NoError(t, err)
		}).Return(true, nil).Once()
		rpsMock.On("FindByID", ctx, int64(7)).Return(upd, nil).Once()

		require.NoError(t, svc.Save(ctx, upd), "no error must be raised")

		c, err := svc.FindByID(ctx, 7)
		require.NoError(t, err)
		require.Equal(t, "New", c.FirstName, "updated customer must be returned")
	}

	t.Log("customer read while it is deleted must not stay cached")
	{
		rpsMock := rpsMocks.NewCustomerRepository(t)
		customerCache := &memoryCustomerCache{customers: make(map[int64]model.Customer)}
		svc := NewCustomerService(transactor.NewNopTransactor(), v, rpsMock, customerCache)

		rpsMock.On("FindByID", ctx, int64(7)).Return(old, nil).Once()
		rpsMock.On("DeleteByID", ctx, int64(7)).Run(func(mock.Arguments) {
			_, err := svc.FindByID(ctx, 7)
			require.NoError(t, err)
		}).Return(nil).Once()
		rpsMock.On("FindByID", ctx, int64(7)).Return(nil, nil).Once()

		require.NoError(t, svc.DeleteByID(ctx, 7), "no error must be raised")

		_, err := svc.FindByID(ctx, 7)
		require.Error(t, err, "deleted customer must not be found")
		require.IsType(t, &customerErrors.EntryNotFoundErr{}, err)
	}
}

// start customer service test suite
func TestCustomerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(customerServiceTestSuite))
}
