package handlers

import (
	"context"

	"github.com/umalmyha/customers-mvc/internal/model"
	"github.com/umalmyha/customers-mvc/internal/service"
	"github.com/umalmyha/customers-mvc/internal/view"
)

// CustomerListPath is where customer list is served, mutating requests are redirected there
const CustomerListPath = "/customer/list"

// CustomerController translates customer requests to store calls and view directives.
// Store errors are returned as is, dispatch layer is responsible for turning them into responses.
type CustomerController struct {
	store service.CustomerStore
}

// NewCustomerController builds CustomerController
func NewCustomerController(store service.CustomerStore) *CustomerController {
	return &CustomerController{store: store}
}

// ListCustomers binds all customers in store order
func (ctl *CustomerController) ListCustomers(ctx context.Context) (view.Directive, error) {
	customers, err := ctl.store.ViewAll(ctx)
	if err != nil {
		return view.Directive{}, err
	}
	return view.Render(view.ListCustomersTemplate, map[string]any{"customers": customers}), nil
}

// ShowCreateForm binds empty customer
func (ctl *CustomerController) ShowCreateForm(_ context.Context) (view.Directive, error) {
	return view.Render(view.CustomerFormTemplate, map[string]any{"customer": &model.Customer{}}), nil
}

// SaveCustomer upserts customer and redirects to list
func (ctl *CustomerController) SaveCustomer(ctx context.Context, c *model.Customer) (view.Directive, error) {
	if err := ctl.store.Save(ctx, c); err != nil {
		return view.Directive{}, err
	}
	return view.Redirect(CustomerListPath), nil
}

// ShowUpdateForm binds customer found by id
func (ctl *CustomerController) ShowUpdateForm(ctx context.Context, id int64) (view.Directive, error) {
	c, err := ctl.store.FindByID(ctx, id)
	if err != nil {
		return view.Directive{}, err
	}
	return view.Render(view.CustomerFormTemplate, map[string]any{"customer": c}), nil
}

// DeleteCustomer deletes customer and redirects to list whether it existed or not
func (ctl *CustomerController) DeleteCustomer(ctx context.Context, id int64) (view.Directive, error) {
	if err := ctl.store.DeleteByID(ctx, id); err != nil {
		return view.Directive{}, err
	}
	return view.Redirect(CustomerListPath), nil
}
