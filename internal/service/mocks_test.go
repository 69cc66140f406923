package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/internal/event"
	"github.com/utafrali/resumeforge/internal/repository"
	pkgkafka "github.com/utafrali/resumeforge/pkg/kafka"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Secrets Repository ---

type mockSecretsRepository struct {
	mock.Mock
}

func (m *mockSecretsRepository) Create(ctx context.Context, secrets *domain.Secrets) error {
	args := m.Called(ctx, secrets)
	return args.Error(0)
}

func (m *mockSecretsRepository) GetByUserID(ctx context.Context, userID string) (*domain.Secrets, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Secrets), args.Error(1)
}

func (m *mockSecretsRepository) GetByResetToken(ctx context.Context, token string) (*domain.Secrets, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Secrets), args.Error(1)
}

func (m *mockSecretsRepository) Update(ctx context.Context, userID string, update repository.SecretsUpdate) error {
	args := m.Called(ctx, userID, update)
	return args.Error(0)
}

// --- Mock Resume Repository ---

type mockResumeRepository struct {
	mock.Mock
}

func (m *mockResumeRepository) Create(ctx context.Context, resume *domain.Resume) error {
	args := m.Called(ctx, resume)
	return args.Error(0)
}

func (m *mockResumeRepository) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *mockResumeRepository) GetByUsernameAndSlug(ctx context.Context, username, slug string) (*domain.Resume, error) {
	args := m.Called(ctx, username, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *mockResumeRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Resume, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resume), args.Error(1)
}

func (m *mockResumeRepository) Update(ctx context.Context, resume *domain.Resume) error {
	args := m.Called(ctx, resume)
	return args.Error(0)
}

func (m *mockResumeRepository) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// --- Mock Statistics Repository ---

type mockStatisticsRepository struct {
	mock.Mock
}

func (m *mockStatisticsRepository) GetByResumeID(ctx context.Context, resumeID string) (*domain.Statistics, error) {
	args := m.Called(ctx, resumeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statistics), args.Error(1)
}

func (m *mockStatisticsRepository) IncrementViews(ctx context.Context, resumeID string) error {
	args := m.Called(ctx, resumeID)
	return args.Error(0)
}

func (m *mockStatisticsRepository) IncrementDownloads(ctx context.Context, resumeID string) error {
	args := m.Called(ctx, resumeID)
	return args.Error(0)
}

// --- Mock Resume Cache ---

type mockResumeCache struct {
	mock.Mock
}

func (m *mockResumeCache) Get(ctx context.Context, username, slug string) (*domain.Resume, error) {
	args := m.Called(ctx, username, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *mockResumeCache) Set(ctx context.Context, username string, resume *domain.Resume) error {
	args := m.Called(ctx, username, resume)
	return args.Error(0)
}

func (m *mockResumeCache) Invalidate(ctx context.Context, username, slug string) error {
	args := m.Called(ctx, username, slug)
	return args.Error(0)
}

// --- Mock Printer ---

type mockPrinter struct {
	mock.Mock
}

func (m *mockPrinter) PrintPDF(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockPrinter) Screenshot(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// --- Shared fixtures ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newTestEventProducer builds a producer pointed at an unreachable broker.
// Publishing fails and the services log and continue, which is the behavior
// under test.
func newTestEventProducer() *event.Producer {
	logger := discardLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}
