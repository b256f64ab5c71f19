package controllers

import (
	"net/http"

	"github.com/procureflow/procureflow-backend/internal/events"
)

// Events upgrades the connection and subscribes it to broadcasts.
func Events(hub *events.Hub) http.HandlerFunc {
	return hub.ServeWS
}
