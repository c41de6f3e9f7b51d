package infra

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	_ "github.com/umalmyha/customers-mvc/docs" // registers swagger document
	"github.com/umalmyha/customers-mvc/internal/auth"
	"github.com/umalmyha/customers-mvc/internal/config"
	appErrors "github.com/umalmyha/customers-mvc/internal/errors"
	"github.com/umalmyha/customers-mvc/internal/handlers"
	"github.com/umalmyha/customers-mvc/internal/middleware"
	"github.com/umalmyha/customers-mvc/internal/service"
	"github.com/umalmyha/customers-mvc/internal/validation"
	"github.com/umalmyha/customers-mvc/internal/view"
	"github.com/umalmyha/customers-mvc/pkg/diagnostics"
	"github.com/umalmyha/customers-mvc/pkg/tracing"
)

// RouterDeps holds everything required to build http application
type RouterDeps struct {
	Logger    *logrus.Logger
	Store     service.CustomerStore
	Validator *validation.EchoValidator
	Tracer    tracing.Tracer
	Metrics   *diagnostics.HTTPMetrics
	AuthCfg   config.AuthCfg
}

func Router(deps RouterDeps) (*echo.Echo, error) {
	renderer, err := view.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Validator = deps.Validator
	e.HTTPErrorHandler = errorHandler(e, deps.Logger)

	// Middleware
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoMiddleware.Recover())
	if deps.Metrics != nil {
		e.Use(middleware.Metrics(deps.Metrics))
	}
	if deps.Tracer != nil {
		e.Use(middleware.Trace(deps.Tracer))
	}

	// Handlers
	custHandler := handlers.NewCustomerHTTPHandler(handlers.NewCustomerController(deps.Store))

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, handlers.CustomerListPath)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// customers
	custGrp := e.Group("/customer")
	if deps.AuthCfg.Enabled() {
		jwtCfg := deps.AuthCfg.JwtCfg
		custGrp.Use(middleware.Authorize(auth.NewJwtValidator(jwtCfg.Issuer, jwtCfg.SigningMethod, jwtCfg.PublicKey)))
	}
	custGrp.GET("/list", custHandler.List)
	custGrp.GET("/showForm", custHandler.ShowForm)
	custGrp.POST("/saveCustomer", custHandler.SaveCustomer)
	custGrp.GET("/updateForm", custHandler.UpdateForm)
	custGrp.GET("/delete", custHandler.Delete)

	return e, nil
}

// errorHandler logs error and translates it to response
func errorHandler(e *echo.Echo, logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		entry := logger.WithFields(logrus.Fields{
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			"path":       c.Request().URL.Path,
		})

		var notFoundErr *appErrors.EntryNotFoundErr
		var payloadErr *validation.PayloadError
		var httpErr *echo.HTTPError

		var respErr error
		switch {
		case errors.As(err, &notFoundErr):
			entry.Warnf("requested entry doesn't exist - %v", err)
			respErr = c.JSON(http.StatusNotFound, notFoundErr)
		case errors.As(err, &payloadErr):
			entry.Warnf("invalid request payload - %v", err)
			respErr = c.JSON(http.StatusBadRequest, payloadErr)
		case errors.As(err, &httpErr):
			if httpErr.Code >= http.StatusInternalServerError {
				entry.Errorf("error occurred on request processing - %v", err)
			} else {
				entry.Warnf("request rejected - %v", err)
			}
			e.DefaultHTTPErrorHandler(httpErr, c)
		default:
			entry.Errorf("error occurred on request processing - %v", err)
			e.DefaultHTTPErrorHandler(echo.ErrInternalServerError, c)
		}

		if respErr != nil {
			entry.Errorf("failed to write error response - %v", respErr)
		}
	}
}
