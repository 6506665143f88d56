package handler

import (
	"log/slog"
	"net/http"

	"salaf/internal/delivery/http/response"
	"salaf/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AdminHandler holds dependencies for the administration endpoints.
type AdminHandler struct {
	uc     usecase.AdminUsecase
	logger *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler, injected by Fx.
func NewAdminHandler(uc usecase.AdminUsecase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		uc:     uc,
		logger: logger,
	}
}

// Stats returns the dashboard aggregates.
func (h *AdminHandler) Stats(c echo.Context) error {
	output, err := h.uc.Overview(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// ListUsers lists accounts, optionally filtered by role.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	output, err := h.uc.ListUsers(c.Request().Context(), c.QueryParam("role"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// UpdateUserRole changes an account's role.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	userID, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Identifiant d'utilisateur invalide")
	}

	var input *usecase.UpdateRoleInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Rôle invalide")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.UpdateUserRole(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Rôle mis à jour")
}

// DeleteUser removes an account. Its credit history is retained.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	userID, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Identifiant d'utilisateur invalide")
	}

	if err := h.uc.DeleteUser(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Utilisateur supprimé")
}

// GetSettings returns the current system settings.
func (h *AdminHandler) GetSettings(c echo.Context) error {
	output, err := h.uc.GetSettings(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// UpdateSettings replaces the system settings.
func (h *AdminHandler) UpdateSettings(c echo.Context) error {
	var input *usecase.SettingsInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Paramètres invalides")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.UpdateSettings(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Paramètres mis à jour")
}
