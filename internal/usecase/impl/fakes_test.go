package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"salaf/internal/domain/entity"
	"salaf/internal/domain/repository"
	"salaf/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ----- test doubles -----

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCreditRepo implements repository.CreditRepository. Only the function
// fields a test sets are wired; the rest fail loudly.
type fakeCreditRepo struct {
	CreateFn         func(ctx context.Context, req *entity.CreditRequest) error
	FindByIDFn       func(ctx context.Context, id uuid.UUID) (*entity.CreditRequest, error)
	FindByUserFn     func(ctx context.Context, userID uuid.UUID) ([]*entity.CreditRequest, error)
	FindAllFn        func(ctx context.Context, filter repository.CreditFilter) ([]*entity.CreditRequest, error)
	FindPendingFn    func(ctx context.Context) ([]*entity.CreditRequest, error)
	FindReviewedByFn func(ctx context.Context, agentID uuid.UUID) ([]*entity.CreditRequest, error)
	SaveFn           func(ctx context.Context, req *entity.CreditRequest) error
	SaveScoringFn    func(ctx context.Context, req *entity.CreditRequest) error
	StatsFn          func(ctx context.Context) (*repository.CreditStats, error)
}

func (m *fakeCreditRepo) Create(ctx context.Context, req *entity.CreditRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}

	return errors.New("unexpected Create call")
}

func (m *fakeCreditRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.CreditRequest, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}

	return nil, errors.New("unexpected FindByID call")
}

func (m *fakeCreditRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.CreditRequest, error) {
	if m.FindByUserFn != nil {
		return m.FindByUserFn(ctx, userID)
	}

	return nil, errors.New("unexpected FindByUser call")
}

func (m *fakeCreditRepo) FindAll(ctx context.Context, filter repository.CreditFilter) ([]*entity.CreditRequest, error) {
	if m.FindAllFn != nil {
		return m.FindAllFn(ctx, filter)
	}

	return nil, errors.New("unexpected FindAll call")
}

func (m *fakeCreditRepo) FindPending(ctx context.Context) ([]*entity.CreditRequest, error) {
	if m.FindPendingFn != nil {
		return m.FindPendingFn(ctx)
	}

	return nil, errors.New("unexpected FindPending call")
}

func (m *fakeCreditRepo) FindReviewedBy(ctx context.Context, agentID uuid.UUID) ([]*entity.CreditRequest, error) {
	if m.FindReviewedByFn != nil {
		return m.FindReviewedByFn(ctx, agentID)
	}

	return nil, errors.New("unexpected FindReviewedBy call")
}

func (m *fakeCreditRepo) Save(ctx context.Context, req *entity.CreditRequest) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, req)
	}

	return errors.New("unexpected Save call")
}

func (m *fakeCreditRepo) SaveScoring(ctx context.Context, req *entity.CreditRequest) error {
	if m.SaveScoringFn != nil {
		return m.SaveScoringFn(ctx, req)
	}

	return errors.New("unexpected SaveScoring call")
}

func (m *fakeCreditRepo) Stats(ctx context.Context) (*repository.CreditStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}

	return nil, errors.New("unexpected Stats call")
}

// fakeSettingsRepo implements repository.SettingsRepository.
type fakeSettingsRepo struct {
	GetFn  func(ctx context.Context) (*entity.SystemSettings, error)
	SaveFn func(ctx context.Context, settings *entity.SystemSettings) error
}

func (m *fakeSettingsRepo) Get(ctx context.Context) (*entity.SystemSettings, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx)
	}

	return entity.DefaultSettings(), nil
}

func (m *fakeSettingsRepo) Save(ctx context.Context, settings *entity.SystemSettings) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, settings)
	}

	return nil
}

// fakeUserRepo implements repository.UserRepository.
type fakeUserRepo struct {
	FindByIDFn       func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsernameFn func(ctx context.Context, username string) (*entity.User, error)
	ListFn           func(ctx context.Context, role *entity.Role) ([]*entity.User, error)
	CreateFn         func(ctx context.Context, user *entity.User) error
	UpdateFn         func(ctx context.Context, user *entity.User) error
	DeleteFn         func(ctx context.Context, id uuid.UUID) error
}

func (m *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}

	return nil, errors.New("unexpected FindByID call")
}

func (m *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	if m.FindByUsernameFn != nil {
		return m.FindByUsernameFn(ctx, username)
	}

	return nil, errors.New("unexpected FindByUsername call")
}

func (m *fakeUserRepo) List(ctx context.Context, role *entity.Role) ([]*entity.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, role)
	}

	return nil, errors.New("unexpected List call")
}

func (m *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	return errors.New("unexpected Create call")
}

func (m *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	return errors.New("unexpected Update call")
}

func (m *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	return errors.New("unexpected Delete call")
}

// fakeTxManager runs the callback against a factory of fakes, counting
// executions so tests can assert no transaction was started.
type fakeTxManager struct {
	factory  *fakeRepoFactory
	Executed int
}

func (m *fakeTxManager) Execute(ctx context.Context, fn func(repos repository.RepositoryFactory) error) error {
	m.Executed++

	return fn(m.factory)
}

// fakeRepoFactory implements repository.RepositoryFactory.
type fakeRepoFactory struct {
	credit   repository.CreditRepository
	user     repository.UserRepository
	settings repository.SettingsRepository
}

func (f *fakeRepoFactory) CreditRepo() repository.CreditRepository { return f.credit }

func (f *fakeRepoFactory) UserRepo() repository.UserRepository { return f.user }

func (f *fakeRepoFactory) SettingsRepo() repository.SettingsRepository { return f.settings }

// fakeScorer implements service.Scorer and counts calls.
type fakeScorer struct {
	ScoreFn func(ctx context.Context, input service.ScoringInput) (*entity.ScoringSnapshot, error)
	Calls   int
}

func (m *fakeScorer) Score(ctx context.Context, input service.ScoringInput) (*entity.ScoringSnapshot, error) {
	m.Calls++
	if m.ScoreFn != nil {
		return m.ScoreFn(ctx, input)
	}

	return nil, errors.New("unexpected Score call")
}

// fakeScoringCache implements service.ScoringCache. The zero value behaves
// as an always-miss cache.
type fakeScoringCache struct {
	GetFn func(ctx context.Context, requestID uuid.UUID) (*entity.ScoringSnapshot, error)
	SetFn func(ctx context.Context, requestID uuid.UUID, snapshot *entity.ScoringSnapshot) error
	Sets  int
}

func (m *fakeScoringCache) Get(ctx context.Context, requestID uuid.UUID) (*entity.ScoringSnapshot, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, requestID)
	}

	return nil, nil
}

func (m *fakeScoringCache) Set(ctx context.Context, requestID uuid.UUID, snapshot *entity.ScoringSnapshot) error {
	m.Sets++
	if m.SetFn != nil {
		return m.SetFn(ctx, requestID, snapshot)
	}

	return nil
}

// fakeHasher implements service.PasswordHasher without real bcrypt cost.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeTokenService implements service.TokenService.
type fakeTokenService struct{}

func (fakeTokenService) GenerateTokens(userID uuid.UUID, roles []string) (string, string, error) {
	return "access-" + userID.String(), "refresh-" + userID.String(), nil
}

func (fakeTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	return nil, errors.New("not implemented")
}

func (fakeTokenService) GetRefreshTokenDuration() time.Duration {
	return 7 * 24 * time.Hour
}

// fakeRecognizer implements service.CardRecognizer.
type fakeRecognizer struct {
	ScanFn func(ctx context.Context, imageBase64, cardType string) (*service.RecognitionResult, error)
}

func (m *fakeRecognizer) ScanIDCard(ctx context.Context, imageBase64, cardType string) (*service.RecognitionResult, error) {
	if m.ScanFn != nil {
		return m.ScanFn(ctx, imageBase64, cardType)
	}

	return nil, errors.New("unexpected ScanIDCard call")
}
