package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cursohub/cursohub-api/internal/events"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/response"
)

// EventsHandler upgrades admin connections onto the session event feed.
type EventsHandler struct {
	hub *events.Hub
}

// NewEventsHandler constructs the handler.
func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Feed godoc
// @Summary Session event feed
// @Description Websocket stream of sign-in, sign-out and refresh events in publish order
// @Tags Admin
// @Success 101 {string} string "switching protocols"
// @Failure 403 {object} response.Envelope
// @Router /admin/events [get]
func (h *EventsHandler) Feed(c *gin.Context) {
	if err := events.Serve(h.hub, c.Writer, c.Request); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upgrade connection"))
	}
}
