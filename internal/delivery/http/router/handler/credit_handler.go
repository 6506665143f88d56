package handler

import (
	"log/slog"
	"net/http"

	"salaf/internal/delivery/http/response"
	"salaf/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CreditHandler holds dependencies for the credit lifecycle endpoints.
type CreditHandler struct {
	uc     usecase.CreditUsecase
	logger *slog.Logger
}

// NewCreditHandler is the constructor for CreditHandler, injected by Fx.
func NewCreditHandler(uc usecase.CreditUsecase, logger *slog.Logger) *CreditHandler {
	return &CreditHandler{
		uc:     uc,
		logger: logger,
	}
}

// Submit handles a new credit request from a client.
func (h *CreditHandler) Submit(c echo.Context) error {
	clientID, err := currentUserID(c)
	if err != nil {
		return response.Unauthorized(c, "TOKEN_INVALID", "Session invalide")
	}

	var input *usecase.SubmitInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Demande de crédit invalide")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Submit(c.Request().Context(), clientID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Demande de crédit soumise")
}

// Simulate scores a draft without persisting anything.
func (h *CreditHandler) Simulate(c echo.Context) error {
	var input *usecase.SubmitInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Simulation invalide")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Simulate(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// MyRequests lists the caller's own requests.
func (h *CreditHandler) MyRequests(c echo.Context) error {
	clientID, err := currentUserID(c)
	if err != nil {
		return response.Unauthorized(c, "TOKEN_INVALID", "Session invalide")
	}

	output, err := h.uc.MyRequests(c.Request().Context(), clientID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// GetMine returns one of the caller's own requests.
func (h *CreditHandler) GetMine(c echo.Context) error {
	clientID, err := currentUserID(c)
	if err != nil {
		return response.Unauthorized(c, "TOKEN_INVALID", "Session invalide")
	}
	requestID, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Identifiant de demande invalide")
	}

	output, err := h.uc.GetForClient(c.Request().Context(), clientID, requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// Cancel withdraws one of the caller's own requests.
func (h *CreditHandler) Cancel(c echo.Context) error {
	clientID, err := currentUserID(c)
	if err != nil {
		return response.Unauthorized(c, "TOKEN_INVALID", "Session invalide")
	}
	requestID, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Identifiant de demande invalide")
	}

	output, err := h.uc.Cancel(c.Request().Context(), clientID, requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Demande annulée")
}

// List returns every request, with optional status, risk and amount filters.
func (h *CreditHandler) List(c echo.Context) error {
	var filter usecase.CreditListFilter
	if err := c.Bind(&filter); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Filtres invalides")
	}

	output, err := h.uc.AllRequests(c.Request().Context(), &filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// Pending returns the review queue, oldest first.
func (h *CreditHandler) Pending(c echo.Context) error {
	output, err := h.uc.PendingQueue(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// Get returns one request in the agent projection.
func (h *CreditHandler) Get(c echo.Context) error {
	requestID, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Identifiant de demande invalide")
	}

	output, err := h.uc.GetForAgent(c.Request().Context(), requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// Assign claims a pending request for the calling agent.
func (h *CreditHandler) Assign(c echo.Context) error {
	agentID, err := currentUserID(c)
	if err != nil {
		return response.Unauthorized(c, "TOKEN_INVALID", "Session invalide")
	}
	requestID, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Identifiant de demande invalide")
	}

	output, err := h.uc.Assign(c.Request().Context(), agentID, requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Demande prise en charge")
}

// Score produces or retrieves the scoring snapshot of a request.
func (h *CreditHandler) Score(c echo.Context) error {
	requestID, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Identifiant de demande invalide")
	}

	output, err := h.uc.Score(c.Request().Context(), requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// Review records an approve/reject decision on a request.
func (h *CreditHandler) Review(c echo.Context) error {
	agentID, err := currentUserID(c)
	if err != nil {
		return response.Unauthorized(c, "TOKEN_INVALID", "Session invalide")
	}
	requestID, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Identifiant de demande invalide")
	}

	var input *usecase.ReviewInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Décision invalide")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Review(c.Request().Context(), agentID, requestID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Décision enregistrée")
}

// History lists the requests the calling agent has decided.
func (h *CreditHandler) History(c echo.Context) error {
	agentID, err := currentUserID(c)
	if err != nil {
		return response.Unauthorized(c, "TOKEN_INVALID", "Session invalide")
	}

	output, err := h.uc.History(c.Request().Context(), agentID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// MarkPaid records the disbursement of an approved loan.
func (h *CreditHandler) MarkPaid(c echo.Context) error {
	requestID, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Identifiant de demande invalide")
	}

	output, err := h.uc.MarkPaid(c.Request().Context(), requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Décaissement enregistré")
}
