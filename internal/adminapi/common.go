package adminapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/plantee/storefront/internal/app"
	"github.com/plantee/storefront/internal/webserver"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	Error   interface{} `json:"error,omitempty"`
}

// FieldError describes one rejected input field
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

type ValidationResponse struct {
	Errors []FieldError `json:"errors"`
}

// GetAppContext returns the application context injected by the web server
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

// requestContext bounds store calls by the configured request timeout
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(GetAppContext(c).Config().Web.RequestTimeout) * time.Second
	if timeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// fail writes an error body. detail is logged, and echoed back only in
// development mode.
func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	resp := ErrorResponse{Code: code, Message: msg}
	if detail != nil {
		if err, isErr := detail.(error); isErr {
			detail = err.Error()
		}
		if status >= http.StatusInternalServerError {
			zap.L().Error(msg,
				zap.String("namespace", "api"),
				zap.String("code", code),
				zap.Any("detail", detail))
		}
		if GetAppContext(c).Config().IsDevelopment() {
			resp.Error = detail
		}
	}
	return c.JSON(status, resp)
}

// validationFailed renders validator errors as {errors:[...]}
func validationFailed(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Value:   fe.Value(),
		})
	}
	return c.JSON(http.StatusBadRequest, ValidationResponse{Errors: out})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "numeric":
		return fmt.Sprintf("%s must be a number", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return "Invalid value"
	}
}
