package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plantee/storefront/internal/assistant"
	"github.com/plantee/storefront/internal/webserver"
)

type chatPayload struct {
	Message string `json:"message"`
}

type chatReply struct {
	Reply string `json:"reply"`
}

func registerAssistantRoutes() {
	webserver.ApiPOST("/assistant/chat", chat)
}

// @Summary Ask the plant assistant
// @Tags assistant
// @Accept json
// @Produce json
// @Param body body chatPayload true "question"
// @Success 200 {object} chatReply
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /assistant/chat [post]
func chat(c echo.Context) error {
	var payload chatPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse message", err)
	}
	reply, err := GetAppContext(c).Assistant().Ask(c.Request().Context(), payload.Message)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Message is required", nil)
	case errors.Is(err, assistant.ErrNotConfigured):
		return fail(c, http.StatusServiceUnavailable, "ASSISTANT_DISABLED", "The plant assistant is not configured", nil)
	case err != nil:
		return fail(c, http.StatusBadGateway, "ASSISTANT_UNAVAILABLE", assistant.UnavailableReply, err)
	}
	return ok(c, chatReply{Reply: reply})
}
