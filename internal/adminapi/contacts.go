package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/internal/webserver"
	"github.com/plantee/storefront/pkg/common"
)

type contactPayload struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

func registerContactRoutes() {
	webserver.ApiPOST("/contact", createContact)
	webserver.ApiGET("/contact", listContacts)
}

// @Summary Submit the contact form
// @Tags contact
// @Accept json
// @Produce json
// @Param body body contactPayload true "message"
// @Success 201 {object} domain.ContactMessage
// @Failure 400 {object} ValidationResponse
// @Router /contact [post]
func createContact(c echo.Context) error {
	var payload contactPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse contact message", err)
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)
	if err := c.Validate(&payload); err != nil {
		return validationFailed(c, err)
	}

	msg := domain.ContactMessage{
		Name:      payload.Name,
		Email:     payload.Email,
		Message:   payload.Message,
		CreatedAt: common.Now(),
	}
	appCtx := GetAppContext(c)
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := appCtx.Store().Contacts.Create(ctx, &msg); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save contact message", err)
	}
	appCtx.Bus().Publish(domain.TopicContactReceived, &msg)
	return created(c, msg)
}

// @Summary List contact messages, newest first
// @Tags contact
// @Produce json
// @Success 200 {array} domain.ContactMessage
// @Router /contact [get]
func listContacts(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	msgs, err := GetAppContext(c).Store().Contacts.List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contact messages", err)
	}
	return ok(c, msgs)
}
