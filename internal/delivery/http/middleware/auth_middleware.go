package middleware

import (
	"strings"

	"salaf/internal/domain/entity"
	"salaf/internal/domain/service"

	"salaf/internal/delivery/http/response"

	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID = "userID"
	ContextKeyRoles  = "roles"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the Bearer access token and stores the caller's
// identity on the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "TOKEN_MISSING", "En-tête Authorization manquant")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "TOKEN_INVALID", "Format de jeton invalide, Bearer attendu")
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "TOKEN_INVALID", "Jeton invalide ou expiré")
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRoles, entity.RolesFromStrings(claims.Roles))

		return next(c)
	}
}

// RequireRole gates a route on a role. It must run after Authenticate.
// ADMIN passes the agent gates, since an administrator can do anything an
// agent can, but not the client gate: agents and administrators never own
// credit requests. The 403 payload carries the caller's own home route so
// the front-end can send them where they belong instead of a dead end.
func (m *AuthMiddleware) RequireRole(required entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(ContextKeyRoles).(entity.Roles)
			if !ok || len(roles) == 0 {
				return response.ForbiddenRedirect(c, "FORBIDDEN", "Accès refusé: rôle inconnu", entity.Roles(nil).HomeRoute())
			}

			if roles.Contains(required) {
				return next(c)
			}
			if required != entity.RoleClient && roles.Contains(entity.RoleAdmin) {
				return next(c)
			}

			return response.ForbiddenRedirect(c, "FORBIDDEN", "Accès refusé: rôle insuffisant", roles.HomeRoute())
		}
	}
}
