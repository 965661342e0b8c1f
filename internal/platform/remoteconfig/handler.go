package remoteconfig

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// Handler serves the shared-settings document consumed by Resolver.
type Handler struct {
	mu     sync.RWMutex
	shared SharedSettings
}

// NewHandler creates the shared-settings handler with initial settings.
func NewHandler(shared SharedSettings) *Handler {
	return &Handler{shared: shared}
}

// SetShared replaces the distributed settings document.
func (h *Handler) SetShared(s SharedSettings) {
	h.mu.Lock()
	h.shared = s
	h.mu.Unlock()
}

// RegisterRoutes mounts the shared-settings route under the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/shared-settings", h.GetSharedSettings)
}

// GetSharedSettings returns the shared settings with the shape marker
// clients require before trusting the document.
func (h *Handler) GetSharedSettings(c echo.Context) error {
	h.mu.RLock()
	shared := h.shared
	h.mu.RUnlock()

	doc := remoteDocument{SharedSettings: shared}
	doc.Meta.Source = sharedSourceMarker
	return c.JSON(http.StatusOK, doc)
}
