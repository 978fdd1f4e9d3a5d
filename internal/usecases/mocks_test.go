package usecases_test

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"luxe-estates.backend/internal/domain/entities"
	"luxe-estates.backend/pkg/currency"
	"luxe-estates.backend/pkg/mailer"
	"luxe-estates.backend/pkg/oauth"
	"luxe-estates.backend/pkg/redis"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock PropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *entities.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Property), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *entities.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) ListAll(ctx context.Context) ([]*entities.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Property), args.Error(1)
}

func (m *MockPropertyRepository) ListFeatured(ctx context.Context) ([]*entities.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Property), args.Error(1)
}

func (m *MockPropertyRepository) Stats(ctx context.Context) (*entities.PropertyStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PropertyStats), args.Error(1)
}

// Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *entities.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*entities.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Profile), args.Error(1)
}

func (m *MockProfileRepository) UpdateSelf(ctx context.Context, profile *entities.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateTier(ctx context.Context, id uuid.UUID, tier entities.MembershipTier) error {
	args := m.Called(ctx, id, tier)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status entities.AccountStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus, verifiedAt *time.Time) error {
	args := m.Called(ctx, id, status, verifiedAt)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role entities.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockProfileRepository) SetRoleByEmails(ctx context.Context, emails []string, role entities.Role) (int64, error) {
	args := m.Called(ctx, emails, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context, filter entities.ProfileFilter, limit, offset int) ([]*entities.Profile, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepository) Stats(ctx context.Context) (*entities.ProfileStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ProfileStats), args.Error(1)
}

// Mock SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error {
	args := m.Called(ctx, sessionID, data, expiration)
	return args.Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redis.SessionData), args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// Mock IdentityVerifier
type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, raw string) (*oauth.Identity, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.Identity), args.Error(1)
}

// Mock EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

// Mock MediaStore
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, r, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStore) Remove(ctx context.Context, publicURL string) error {
	args := m.Called(ctx, publicURL)
	return args.Error(0)
}

// Mock mail Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// Mock IPLocator
type MockIPLocator struct {
	mock.Mock
}

func (m *MockIPLocator) LookupIP(ctx context.Context, ip string) (*currency.Lookup, error) {
	args := m.Called(ctx, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Lookup), args.Error(1)
}

// Mock CoordinateLocator
type MockCoordinateLocator struct {
	mock.Mock
}

func (m *MockCoordinateLocator) LookupCoordinates(ctx context.Context, lat, lon float64) (*currency.Lookup, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Lookup), args.Error(1)
}

// staticRates is a RateSource returning a fixed snapshot
type staticRates struct {
	snap currency.Snapshot
}

func (s staticRates) Get(context.Context) currency.Snapshot { return s.snap }

func fallbackRates() staticRates {
	return staticRates{snap: currency.FallbackSnapshot(time.Now())}
}
