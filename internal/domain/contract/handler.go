package contract

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sushil-negi/intake-automation-sub003/internal/platform/export"
	"github.com/sushil-negi/intake-automation-sub003/internal/platform/phi"
)

// PolicyProvider supplies the org's current export privacy policy.
type PolicyProvider interface {
	ExportPolicy(ctx context.Context) phi.ExportConfig
}

// Handler exposes the contract HTTP surface.
type Handler struct {
	svc    *Service
	policy PolicyProvider
}

// NewHandler creates the contract handler.
func NewHandler(svc *Service, policy PolicyProvider) *Handler {
	return &Handler{svc: svc, policy: policy}
}

// RegisterRoutes mounts the contract routes under the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/contracts", h.Create)
	api.GET("/contracts", h.List)
	api.GET("/contracts/export.csv", h.ExportCSV)
	api.GET("/contracts/export.json", h.ExportJSON)
	api.GET("/contracts/:id", h.Get)
	api.PUT("/contracts/:id", h.Update)
	api.DELETE("/contracts/:id", h.Delete)
}

func orgID(c echo.Context) string {
	if org := c.Request().Header.Get("X-Org-ID"); org != "" {
		return org
	}
	return c.QueryParam("org")
}

func (h *Handler) Create(c echo.Context) error {
	var doc map[string]any
	if err := c.Bind(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Save(c.Request().Context(), orgID(c), doc)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	doc, rec, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "contract not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"record": rec, "data": doc})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var doc map[string]any
	if err := c.Bind(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Update(c.Request().Context(), id, doc)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "contract not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "contract not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	records, err := h.svc.List(c.Request().Context(), orgID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"contracts": records, "total": len(records)})
}

func (h *Handler) ExportCSV(c echo.Context) error {
	org := orgID(c)
	rows, err := h.svc.Export(c.Request().Context(), org, h.policy.ExportPolicy(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	name := export.SanitizeFilename(org)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s_contracts.csv"`, name))
	return c.Blob(http.StatusOK, "text/csv", []byte(export.BuildCSV(export.Headers(rows), rows)))
}

func (h *Handler) ExportJSON(c echo.Context) error {
	rows, err := h.svc.Export(c.Request().Context(), orgID(c), h.policy.ExportPolicy(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}
