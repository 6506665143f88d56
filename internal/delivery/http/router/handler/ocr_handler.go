package handler

import (
	"log/slog"
	"net/http"

	"salaf/internal/delivery/http/response"
	"salaf/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// OcrHandler holds dependencies for the ID-card scan endpoint.
type OcrHandler struct {
	uc     usecase.OcrUsecase
	logger *slog.Logger
}

// NewOcrHandler is the constructor for OcrHandler, injected by Fx.
func NewOcrHandler(uc usecase.OcrUsecase, logger *slog.Logger) *OcrHandler {
	return &OcrHandler{
		uc:     uc,
		logger: logger,
	}
}

// Scan recognizes a photographed ID card and merges the result into the
// caller's form draft. A failed scan leaves the draft untouched.
func (h *OcrHandler) Scan(c echo.Context) error {
	var input *usecase.ScanInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Image invalide")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Scan(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}
