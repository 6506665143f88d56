package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"salaf/internal/delivery/http/middleware"
	"salaf/internal/delivery/http/validator"
	"salaf/internal/domain/repository"
	"salaf/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newContext builds an Echo context with the JSON body and the struct
// validator wired, the way the server sets it up.
func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

// authenticate stores the caller the way the auth middleware does.
func authenticate(c echo.Context, userID uuid.UUID) {
	c.Set(middleware.ContextKeyUserID, userID)
}

type fakeAuthUsecase struct {
	SignupFn  func(ctx context.Context, input *usecase.SignupInput) (*usecase.UserView, error)
	LoginFn   func(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error)
	ProfileFn func(ctx context.Context, userID uuid.UUID) (*usecase.UserView, error)
}

func (m *fakeAuthUsecase) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.UserView, error) {
	if m.SignupFn != nil {
		return m.SignupFn(ctx, input)
	}

	return nil, errors.New("unexpected Signup call")
}

func (m *fakeAuthUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, input)
	}

	return nil, errors.New("unexpected Login call")
}

func (m *fakeAuthUsecase) Profile(ctx context.Context, userID uuid.UUID) (*usecase.UserView, error) {
	if m.ProfileFn != nil {
		return m.ProfileFn(ctx, userID)
	}

	return nil, errors.New("unexpected Profile call")
}

type fakeCreditUsecase struct {
	SubmitFn       func(ctx context.Context, clientID uuid.UUID, input *usecase.SubmitInput) (*usecase.ClientCreditView, error)
	SimulateFn     func(ctx context.Context, input *usecase.SubmitInput) (*usecase.ScoringView, error)
	MyRequestsFn   func(ctx context.Context, clientID uuid.UUID) ([]*usecase.ClientCreditView, error)
	GetForClientFn func(ctx context.Context, clientID, requestID uuid.UUID) (*usecase.ClientCreditView, error)
	CancelFn       func(ctx context.Context, clientID, requestID uuid.UUID) (*usecase.ClientCreditView, error)
	AllRequestsFn  func(ctx context.Context, filter *usecase.CreditListFilter) ([]*usecase.AgentCreditView, error)
	PendingQueueFn func(ctx context.Context) ([]*usecase.AgentCreditView, error)
	GetForAgentFn  func(ctx context.Context, requestID uuid.UUID) (*usecase.AgentCreditView, error)
	AssignFn       func(ctx context.Context, agentID, requestID uuid.UUID) (*usecase.AgentCreditView, error)
	ScoreFn        func(ctx context.Context, requestID uuid.UUID) (*usecase.ScoringView, error)
	ReviewFn       func(ctx context.Context, agentID, requestID uuid.UUID, input *usecase.ReviewInput) (*usecase.AgentCreditView, error)
	HistoryFn      func(ctx context.Context, agentID uuid.UUID) ([]*usecase.AgentCreditView, error)
	MarkPaidFn     func(ctx context.Context, requestID uuid.UUID) (*usecase.AgentCreditView, error)
	StatsFn        func(ctx context.Context) (*repository.CreditStats, error)
}

func (m *fakeCreditUsecase) Submit(ctx context.Context, clientID uuid.UUID, input *usecase.SubmitInput) (*usecase.ClientCreditView, error) {
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, clientID, input)
	}

	return nil, errors.New("unexpected Submit call")
}

func (m *fakeCreditUsecase) Simulate(ctx context.Context, input *usecase.SubmitInput) (*usecase.ScoringView, error) {
	if m.SimulateFn != nil {
		return m.SimulateFn(ctx, input)
	}

	return nil, errors.New("unexpected Simulate call")
}

func (m *fakeCreditUsecase) MyRequests(ctx context.Context, clientID uuid.UUID) ([]*usecase.ClientCreditView, error) {
	if m.MyRequestsFn != nil {
		return m.MyRequestsFn(ctx, clientID)
	}

	return nil, errors.New("unexpected MyRequests call")
}

func (m *fakeCreditUsecase) GetForClient(ctx context.Context, clientID, requestID uuid.UUID) (*usecase.ClientCreditView, error) {
	if m.GetForClientFn != nil {
		return m.GetForClientFn(ctx, clientID, requestID)
	}

	return nil, errors.New("unexpected GetForClient call")
}

func (m *fakeCreditUsecase) Cancel(ctx context.Context, clientID, requestID uuid.UUID) (*usecase.ClientCreditView, error) {
	if m.CancelFn != nil {
		return m.CancelFn(ctx, clientID, requestID)
	}

	return nil, errors.New("unexpected Cancel call")
}

func (m *fakeCreditUsecase) AllRequests(ctx context.Context, filter *usecase.CreditListFilter) ([]*usecase.AgentCreditView, error) {
	if m.AllRequestsFn != nil {
		return m.AllRequestsFn(ctx, filter)
	}

	return nil, errors.New("unexpected AllRequests call")
}

func (m *fakeCreditUsecase) PendingQueue(ctx context.Context) ([]*usecase.AgentCreditView, error) {
	if m.PendingQueueFn != nil {
		return m.PendingQueueFn(ctx)
	}

	return nil, errors.New("unexpected PendingQueue call")
}

func (m *fakeCreditUsecase) GetForAgent(ctx context.Context, requestID uuid.UUID) (*usecase.AgentCreditView, error) {
	if m.GetForAgentFn != nil {
		return m.GetForAgentFn(ctx, requestID)
	}

	return nil, errors.New("unexpected GetForAgent call")
}

func (m *fakeCreditUsecase) Assign(ctx context.Context, agentID, requestID uuid.UUID) (*usecase.AgentCreditView, error) {
	if m.AssignFn != nil {
		return m.AssignFn(ctx, agentID, requestID)
	}

	return nil, errors.New("unexpected Assign call")
}

func (m *fakeCreditUsecase) Score(ctx context.Context, requestID uuid.UUID) (*usecase.ScoringView, error) {
	if m.ScoreFn != nil {
		return m.ScoreFn(ctx, requestID)
	}

	return nil, errors.New("unexpected Score call")
}

func (m *fakeCreditUsecase) Review(ctx context.Context, agentID, requestID uuid.UUID, input *usecase.ReviewInput) (*usecase.AgentCreditView, error) {
	if m.ReviewFn != nil {
		return m.ReviewFn(ctx, agentID, requestID, input)
	}

	return nil, errors.New("unexpected Review call")
}

func (m *fakeCreditUsecase) History(ctx context.Context, agentID uuid.UUID) ([]*usecase.AgentCreditView, error) {
	if m.HistoryFn != nil {
		return m.HistoryFn(ctx, agentID)
	}

	return nil, errors.New("unexpected History call")
}

func (m *fakeCreditUsecase) MarkPaid(ctx context.Context, requestID uuid.UUID) (*usecase.AgentCreditView, error) {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(ctx, requestID)
	}

	return nil, errors.New("unexpected MarkPaid call")
}

func (m *fakeCreditUsecase) Stats(ctx context.Context) (*repository.CreditStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}

	return nil, errors.New("unexpected Stats call")
}

var _ usecase.AuthUsecase = (*fakeAuthUsecase)(nil)
var _ usecase.CreditUsecase = (*fakeCreditUsecase)(nil)
