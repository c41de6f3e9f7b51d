package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/umalmyha/customers-mvc/internal/auth"
)

// AccessTokenCookie is cookie name browsers can use to pass access token
const AccessTokenCookie = "access-token"

// Authorize rejects requests without valid access token.
// Token is taken from Authorization header (Bearer scheme) or from access token cookie.
func Authorize(validator *auth.JwtValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := accessToken(c)
			if err != nil {
				return err
			}

			if _, err := validator.Verify(token); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			return next(c)
		}
	}
}

func accessToken(c echo.Context) (string, error) {
	if authHdr := c.Request().Header.Get(echo.HeaderAuthorization); authHdr != "" {
		hdrSplit := strings.Split(authHdr, " ")
		if len(hdrSplit) != 2 || !strings.EqualFold(hdrSplit[0], "Bearer") {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid Authorization header format")
		}
		return hdrSplit[1], nil
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "access token is missing")
}
