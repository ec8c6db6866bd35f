package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/SscSPs/pricing_engine/internal/platform/cache"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) (*domain.Currency, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindLatestExchangeRate(ctx context.Context, base, quote string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, base, quote, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) InsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// --- Mock RateCardRepository ---
type MockRateCardRepository struct {
	mock.Mock
}

func (m *MockRateCardRepository) FindRateCardsCovering(ctx context.Context, organizationID string, asOf time.Time) ([]domain.RateCard, error) {
	args := m.Called(ctx, organizationID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateCard), args.Error(1)
}

func (m *MockRateCardRepository) FindRateCardByID(ctx context.Context, rateCardID string) (*domain.RateCard, error) {
	args := m.Called(ctx, rateCardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateCard), args.Error(1)
}

func (m *MockRateCardRepository) ListRateCardItems(ctx context.Context, rateCardID string) ([]domain.RateCardItem, error) {
	args := m.Called(ctx, rateCardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateCardItem), args.Error(1)
}

// SaveRateCardItem returns the configured row, or echoes the input when the
// expectation was set up with storedAs.
func (m *MockRateCardRepository) SaveRateCardItem(ctx context.Context, item domain.RateCardItem) (*domain.RateCardItem, error) {
	args := m.Called(ctx, item)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func(domain.RateCardItem) *domain.RateCardItem:
		return v(item), args.Error(1)
	default:
		return v.(*domain.RateCardItem), args.Error(1)
	}
}

// storedAs echoes the saved item, replacing CreatedAt when createdAt is set.
func storedAs(createdAt time.Time) func(domain.RateCardItem) *domain.RateCardItem {
	return func(i domain.RateCardItem) *domain.RateCardItem {
		if !createdAt.IsZero() {
			i.CreatedAt = createdAt
		}
		return &i
	}
}

func (m *MockRateCardRepository) DeactivateRateCardItem(ctx context.Context, rateCardID, rateCardItemID, userID string) error {
	args := m.Called(ctx, rateCardID, rateCardItemID, userID)
	return args.Error(0)
}

func (m *MockRateCardRepository) SetRateCardActive(ctx context.Context, rateCardID string, active bool, userID string) error {
	args := m.Called(ctx, rateCardID, active, userID)
	return args.Error(0)
}

// --- Mock OrganizationRepository ---
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) IsOrganizationMember(ctx context.Context, organizationID, actorID string) (bool, error) {
	args := m.Called(ctx, organizationID, actorID)
	return args.Bool(0), args.Error(1)
}

// --- Mock PermissionChecker ---
type MockPermissionChecker struct {
	mock.Mock
}

func (m *MockPermissionChecker) HasPermission(ctx context.Context, actorID, permissionName string) (bool, error) {
	args := m.Called(ctx, actorID, permissionName)
	return args.Bool(0), args.Error(1)
}

// --- Mock AuditLogger ---
type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) Record(ctx context.Context, entry domain.AuditEntry) {
	m.Called(ctx, entry)
}

// --- helpers ---

var testDate = time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

func newTestCache(clock clockwork.Clock) *cache.Coordinator {
	return cache.New(cache.Options{
		Clock: clock,
		Rand:  func() float64 { return 0.5 },
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func money(amount, currency string) domain.Money {
	return domain.NewMoney(dec(amount), currency)
}

func strPtr(s string) *string {
	return &s
}

func activeCurrency(code string, decimalPlaces int) *domain.Currency {
	return &domain.Currency{CurrencyCode: code, Name: code, DecimalPlaces: decimalPlaces, IsActive: true}
}
