package handlers

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/umalmyha/customers-mvc/internal/model"
	"github.com/umalmyha/customers-mvc/internal/validation"
	"github.com/umalmyha/customers-mvc/internal/view"
)

type identifier struct {
	CustomerID string `json:"customerId" validate:"required,number"`
}

// CustomerHTTPHandler is http handler for customer endpoint
type CustomerHTTPHandler struct {
	controller *CustomerController
}

// NewCustomerHTTPHandler builds new CustomerHTTPHandler
func NewCustomerHTTPHandler(controller *CustomerController) *CustomerHTTPHandler {
	return &CustomerHTTPHandler{controller: controller}
}

// List renders all customers
// @Summary     List customers
// @Description Renders list of all customers
// @Tags        customers
// @Produce     html
// @Produce     json
// @Success     200 {object} object{customers=[]model.Customer}
// @Failure     500 {object} echo.HTTPError
// @Router      /customer/list [get]
func (h *CustomerHTTPHandler) List(c echo.Context) error {
	d, err := h.controller.ListCustomers(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, d)
}

// ShowForm renders empty customer form
// @Summary     Customer creation form
// @Description Renders form for new customer
// @Tags        customers
// @Produce     html
// @Produce     json
// @Success     200 {object} object{customer=model.Customer}
// @Router      /customer/showForm [get]
func (h *CustomerHTTPHandler) ShowForm(c echo.Context) error {
	d, err := h.controller.ShowCreateForm(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, d)
}

// SaveCustomer creates or updates customer
// @Summary     Save customer
// @Description Creates customer if id is missing, otherwise updates it, then redirects to list
// @Tags        customers
// @Accept      x-www-form-urlencoded
// @Param       id        formData integer false "Customer id"
// @Param       firstName formData string  true  "First name"
// @Param       lastName  formData string  true  "Last name"
// @Param       email     formData string  true  "Email"
// @Success     302 "Redirect to customer list"
// @Failure     400 {object} validation.PayloadError
// @Failure     500 {object} echo.HTTPError
// @Router      /customer/saveCustomer [post]
func (h *CustomerHTTPHandler) SaveCustomer(c echo.Context) error {
	customer, err := customerFromForm(c)
	if err != nil {
		return err
	}

	d, err := h.controller.SaveCustomer(c.Request().Context(), customer)
	if err != nil {
		return err
	}
	return respond(c, d)
}

// UpdateForm renders form filled with customer data
// @Summary     Customer update form
// @Description Renders form for existing customer
// @Tags        customers
// @Produce     html
// @Produce     json
// @Param       customerId query    integer true "Customer id"
// @Success     200        {object} object{customer=model.Customer}
// @Failure     400        {object} validation.PayloadError
// @Failure     404        {object} errors.EntryNotFoundErr
// @Failure     500        {object} echo.HTTPError
// @Router      /customer/updateForm [get]
func (h *CustomerHTTPHandler) UpdateForm(c echo.Context) error {
	id, err := customerIDParam(c)
	if err != nil {
		return err
	}

	d, err := h.controller.ShowUpdateForm(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, d)
}

// Delete deletes customer
// @Summary     Delete customer
// @Description Deletes customer with provided id, then redirects to list
// @Tags        customers
// @Param       customerId query integer true "Customer id"
// @Success     302 "Redirect to customer list"
// @Failure     400 {object} validation.PayloadError
// @Failure     500 {object} echo.HTTPError
// @Router      /customer/delete [get]
func (h *CustomerHTTPHandler) Delete(c echo.Context) error {
	id, err := customerIDParam(c)
	if err != nil {
		return err
	}

	d, err := h.controller.DeleteCustomer(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, d)
}

func respond(c echo.Context, d view.Directive) error {
	if d.IsRedirect() {
		return c.Redirect(http.StatusFound, d.Path)
	}

	if prefersJSON(c.Request().Header.Get(echo.HeaderAccept)) {
		return c.JSON(http.StatusOK, d.Data)
	}
	return c.Render(http.StatusOK, d.Template, d.Data)
}

// prefersJSON reports whether json is acceptable and weighted above html, wildcards don't count for html
func prefersJSON(accept string) bool {
	var jsonQ, htmlQ float64
	for _, mediaRange := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(mediaRange))
		if err != nil {
			continue
		}

		q := 1.0
		if raw, ok := params["q"]; ok {
			if q, err = strconv.ParseFloat(raw, 64); err != nil {
				continue
			}
		}

		switch mediaType {
		case echo.MIMEApplicationJSON:
			jsonQ = max(jsonQ, q)
		case "text/html":
			htmlQ = max(htmlQ, q)
		}
	}
	return jsonQ > 0 && jsonQ > htmlQ
}

func customerIDParam(c echo.Context) (int64, error) {
	raw := c.QueryParam("customerId")
	if err := c.Validate(&identifier{CustomerID: raw}); err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, validation.NewPayloadError("customerId", "customerId must be a valid integer")
	}
	return id, nil
}

// customerFromForm maps form fields to customer, empty id means new customer
func customerFromForm(c echo.Context) (*model.Customer, error) {
	customer := &model.Customer{
		FirstName: strings.TrimSpace(c.FormValue("firstName")),
		LastName:  strings.TrimSpace(c.FormValue("lastName")),
		Email:     strings.TrimSpace(c.FormValue("email")),
	}

	if raw := strings.TrimSpace(c.FormValue("id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return nil, validation.NewPayloadError("id", "id must be a valid integer")
		}
		customer.ID = id
	}
	return customer, nil
}
