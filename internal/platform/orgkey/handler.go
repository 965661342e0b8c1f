package orgkey

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Handler exposes the key derivation endpoint. It derives keys on demand
// from the master secret; no per-org key material is stored server-side.
type Handler struct {
	masterSecret string
	authSecret   []byte
}

// NewHandler creates the key service handler. masterSecret seeds key
// derivation; authSecret verifies HMAC bearer tokens on the admin route.
func NewHandler(masterSecret, authSecret string) *Handler {
	return &Handler{masterSecret: masterSecret, authSecret: []byte(authSecret)}
}

// RegisterRoutes mounts the key service under the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/admin/org-key", h.GetOrgKey, h.requireBearer)
}

// requireBearer validates the Authorization header as an HS256 JWT signed
// with the shared auth secret and carrying an admin role claim.
func (h *Handler) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, keyEnvelope{Error: "missing bearer token"})
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			return h.authSecret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			return c.JSON(http.StatusUnauthorized, keyEnvelope{Error: "invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["role"] != "admin" {
			return c.JSON(http.StatusForbidden, keyEnvelope{Error: "admin role required"})
		}
		return next(c)
	}
}

// GetOrgKey derives and returns the base64 key for the requested org.
func (h *Handler) GetOrgKey(c echo.Context) error {
	orgID := c.QueryParam("org")
	if orgID == "" {
		return c.JSON(http.StatusBadRequest, keyEnvelope{Error: "org query parameter is required"})
	}
	if h.masterSecret == "" {
		return c.JSON(http.StatusInternalServerError, keyEnvelope{Error: "key derivation is not configured"})
	}

	key := Derive(h.masterSecret, orgID)
	return c.JSON(http.StatusOK, map[string]any{
		"ok": true,
		"data": map[string]string{
			"key": base64.StdEncoding.EncodeToString(key),
		},
	})
}

// AdminToken mints a short-lived HS256 bearer token for the key service.
// Used by operator tooling and server-to-server calls.
func AdminToken(authSecret string, claims jwt.MapClaims) (string, error) {
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	claims["role"] = "admin"
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(authSecret))
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}
