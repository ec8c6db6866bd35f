package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/dto"
	"github.com/SscSPs/pricing_engine/internal/handlers"
	"github.com/SscSPs/pricing_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock services ---

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) ResolvePricing(ctx context.Context, req domain.PricingRequest) (*domain.PricingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingResult), args.Error(1)
}

type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrency(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) GetDecimalPlaces(ctx context.Context, currencyCode string) (int, error) {
	args := m.Called(ctx, currencyCode)
	return args.Int(0), args.Error(1)
}
func (m *MockCurrencyService) GetFxRate(ctx context.Context, base, quote string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, base, quote, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockCurrencyService) GetFxRateWithFallback(ctx context.Context, base, quote string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, base, quote, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockCurrencyService) GetFxSnapshot(ctx context.Context, base, quote string, asOf time.Time) (*domain.FXSnapshot, error) {
	args := m.Called(ctx, base, quote, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FXSnapshot), args.Error(1)
}

type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

type MockRateCardWriter struct {
	mock.Mock
}

func (m *MockRateCardWriter) SaveRateCardItem(ctx context.Context, rateCardID string, req dto.SaveRateCardItemRequest, userID string) (*domain.RateCardItem, error) {
	args := m.Called(ctx, rateCardID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateCardItem), args.Error(1)
}
func (m *MockRateCardWriter) DeactivateRateCardItem(ctx context.Context, rateCardID, rateCardItemID, userID string) error {
	return m.Called(ctx, rateCardID, rateCardItemID, userID).Error(0)
}
func (m *MockRateCardWriter) SetRateCardActive(ctx context.Context, rateCardID string, active bool, userID string) error {
	return m.Called(ctx, rateCardID, active, userID).Error(0)
}

type MockPermissionChecker struct {
	mock.Mock
}

func (m *MockPermissionChecker) HasPermission(ctx context.Context, actorID, permissionName string) (bool, error) {
	args := m.Called(ctx, actorID, permissionName)
	return args.Bool(0), args.Error(1)
}

type MockCacheAdmin struct {
	mock.Mock
}

func (m *MockCacheAdmin) BustRateCard(ctx context.Context, rateCardID string) {
	m.Called(ctx, rateCardID)
}
func (m *MockCacheAdmin) BustActiveRateCards(ctx context.Context, organizationID string) {
	m.Called(ctx, organizationID)
}
func (m *MockCacheAdmin) BustFxRate(ctx context.Context, base, quote string) {
	m.Called(ctx, base, quote)
}
func (m *MockCacheAdmin) BustCurrency(ctx context.Context, currencyCode string) {
	m.Called(ctx, currencyCode)
}
func (m *MockCacheAdmin) BustOrganization(ctx context.Context, organizationID string) {
	m.Called(ctx, organizationID)
}

type MockCurrencyAdmin struct {
	mock.Mock
}

func (m *MockCurrencyAdmin) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}
func (m *MockCurrencyAdmin) SaveCurrency(ctx context.Context, currencyCode string, req dto.SaveCurrencyRequest, userID string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

type MockOrganizationAccess struct {
	mock.Mock
}

func (m *MockOrganizationAccess) AuthorizeOrganizationAccess(ctx context.Context, actorID, organizationID string) error {
	return m.Called(ctx, actorID, organizationID).Error(0)
}

// Ensure mocks implement the interfaces
var (
	_ portssvc.CurrencyAdminSvc      = (*MockCurrencyAdmin)(nil)
	_ portssvc.OrganizationAccessSvc = (*MockOrganizationAccess)(nil)
	_ portssvc.PricingSvc            = (*MockPricingService)(nil)
	_ portssvc.CurrencySvcFacade     = (*MockCurrencyService)(nil)
	_ portssvc.ExchangeRateWriterSvc = (*MockExchangeRateService)(nil)
	_ portssvc.RateCardWriterSvc     = (*MockRateCardWriter)(nil)
	_ portssvc.PermissionCheckerSvc  = (*MockPermissionChecker)(nil)
	_ portssvc.CacheAdminSvc         = (*MockCacheAdmin)(nil)
)

// --- Test Suite ---

type HandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	jwtSecret   string
	actorID     string
	pricing     *MockPricingService
	currency    *MockCurrencyService
	rates       *MockExchangeRateService
	rateCards   *MockRateCardWriter
	permissions *MockPermissionChecker
	cacheAdmin  *MockCacheAdmin
	currencyAdm *MockCurrencyAdmin
	orgAccess   *MockOrganizationAccess
}

func (suite *HandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "pricing-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.actorID = uuid.NewString()

	suite.pricing = new(MockPricingService)
	suite.currency = new(MockCurrencyService)
	suite.rates = new(MockExchangeRateService)
	suite.rateCards = new(MockRateCardWriter)
	suite.permissions = new(MockPermissionChecker)
	suite.cacheAdmin = new(MockCacheAdmin)
	suite.currencyAdm = new(MockCurrencyAdmin)
	suite.orgAccess = new(MockOrganizationAccess)
	suite.orgAccess.On("AuthorizeOrganizationAccess", mock.Anything, suite.actorID, mock.Anything).Return(nil).Maybe()

	cfg := &config.Config{JWTSecret: suite.jwtSecret, RateLimit: "1000-M"}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Currency:           suite.currency,
		CurrencyAdmin:      suite.currencyAdm,
		ExchangeRate:       suite.rates,
		RateCardWriter:     suite.rateCards,
		Pricing:            suite.pricing,
		Permission:         suite.permissions,
		OrganizationAccess: suite.orgAccess,
		CacheAdmin:         suite.cacheAdmin,
	})
}

func (suite *HandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.actorID))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) allow(permission string, allowed bool) {
	suite.permissions.On("HasPermission", mock.Anything, suite.actorID, permission).Return(allowed, nil)
}

func pricingBody(quantity string) map[string]any {
	return map[string]any{
		"asOfDate": "2025-03-14",
		"lineItems": []map[string]any{
			{"description": "Consulting", "quantity": quantity, "serviceCategoryID": "consulting"},
		},
	}
}

func resolvedItem(index int, description, amount string) domain.ResolvedLineItem {
	category := "consulting"
	price := domain.NewMoney(decimal.RequireFromString(amount), "NZD")
	return domain.ResolvedLineItem{
		Index: index,
		LineItemInput: domain.LineItemInput{
			Description:       description,
			Quantity:          decimal.NewFromInt(1),
			ServiceCategoryID: &category,
		},
		UnitPrice: price,
		LineTotal: price,
		Source:    domain.PriceSourceCategoryMatch,
	}
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestResolvePricing_Success() {
	orgID := uuid.NewString()
	result := &domain.PricingResult{
		Resolved:             []domain.ResolvedLineItem{resolvedItem(0, "Consulting", "150")},
		RateCardID:           "rc-1",
		BillingCurrency:      "NZD",
		BillingDecimalPlaces: 2,
	}
	suite.pricing.On("ResolvePricing", mock.Anything, mock.MatchedBy(func(r domain.PricingRequest) bool {
		return r.OrganizationID == orgID && r.ActorID == suite.actorID && len(r.LineItems) == 1 &&
			r.AsOfDate.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	})).Return(result, nil).Once()

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/organizations/%s/pricing/resolve", orgID), pricingBody("1"))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ResolvePricingResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("rc-1", resp.RateCardID)
	suite.Require().Len(resp.LineItems, 1)
	suite.Equal("150.00", resp.LineItems[0].UnitPrice.Amount)
	suite.Equal("category_match", resp.LineItems[0].Source)
	suite.pricing.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestResolvePricing_UnmatchedReturnsPartialResult() {
	orgID := uuid.NewString()
	partial := &domain.PricingResult{
		Resolved:             []domain.ResolvedLineItem{resolvedItem(0, "Consulting", "150")},
		RateCardID:           "rc-1",
		BillingCurrency:      "NZD",
		BillingDecimalPlaces: 2,
	}
	unmatched := &apperrors.UnmatchedLineItemsError{}
	unmatched.Add(1, "Mystery work", "no matching rate card item")
	suite.pricing.On("ResolvePricing", mock.Anything, mock.Anything).Return(partial, unmatched).Once()

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/organizations/%s/pricing/resolve", orgID), pricingBody("1"))

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp dto.UnmatchedLineItemsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Unmatched, 1)
	suite.Equal(1, resp.Unmatched[0].Index)
	suite.Require().Len(resp.Resolved, 1)
	suite.Equal(0, resp.Resolved[0].Index)
}

func (suite *HandlerTestSuite) TestResolvePricing_ErrorStatuses() {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "no active rate card", err: fmt.Errorf("org x: %w", apperrors.ErrNoActiveRateCard), wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown organization", err: fmt.Errorf("org x: %w", apperrors.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "deadline", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout},
		{name: "store failure", err: fmt.Errorf("%w: boom", apperrors.ErrCacheLoadFailure), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			suite.pricing.On("ResolvePricing", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := suite.do(http.MethodPost, "/api/v1/organizations/org-1/pricing/resolve", pricingBody("1"))
			suite.Equal(tt.wantStatus, w.Code)
		})
	}
}

func (suite *HandlerTestSuite) TestResolvePricing_InvalidBody() {
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "negative quantity", body: pricingBody("-1")},
		{name: "missing date", body: map[string]any{"lineItems": []map[string]any{{"description": "x", "quantity": "1"}}}},
		{name: "bad date", body: map[string]any{"asOfDate": "14/03/2025", "lineItems": []map[string]any{{"description": "x", "quantity": "1"}}}},
		{name: "no line items", body: map[string]any{"asOfDate": "2025-03-14", "lineItems": []map[string]any{}}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.do(http.MethodPost, "/api/v1/organizations/org-1/pricing/resolve", tt.body)
			suite.Equal(http.StatusBadRequest, w.Code)
		})
	}
	suite.pricing.AssertNotCalled(suite.T(), "ResolvePricing", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestResolvePricing_RequiresToken() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/organizations/org-1/pricing/resolve", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.pricing.AssertNotCalled(suite.T(), "ResolvePricing", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestResolvePricing_NonMemberSeesNotFound() {
	orgID := uuid.NewString()
	suite.orgAccess.ExpectedCalls = nil
	suite.orgAccess.On("AuthorizeOrganizationAccess", mock.Anything, suite.actorID, orgID).
		Return(fmt.Errorf("organization %s: %w", orgID, apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/organizations/%s/pricing/resolve", orgID), pricingBody("1"))

	suite.Equal(http.StatusNotFound, w.Code)
	suite.orgAccess.AssertExpectations(suite.T())
	suite.pricing.AssertNotCalled(suite.T(), "ResolvePricing", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGetFxSnapshot() {
	asOf := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	snapshot := &domain.FXSnapshot{
		BaseCurrency:  "NZD",
		QuoteCurrency: "AUD",
		Rate:          decimal.RequireFromString("0.92"),
		Source:        "derived:rbnz",
		EffectiveFrom: asOf.AddDate(0, 0, -3),
		AsOf:          asOf,
	}
	suite.currency.On("GetFxSnapshot", mock.Anything, "NZD", "AUD", asOf).Return(snapshot, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/fx/snapshot/nzd/aud?asOf=2025-03-14", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.FXSnapshotResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Derived)
	suite.Equal("2025-03-11", resp.EffectiveFrom)
	suite.True(decimal.RequireFromString("0.92").Equal(resp.Rate))
}

func (suite *HandlerTestSuite) TestGetFxSnapshot_Errors() {
	w := suite.do(http.MethodGet, "/api/v1/fx/snapshot/NZD/AUD?asOf=yesterday", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.currency.On("GetFxSnapshot", mock.Anything, "NZD", "JPY", mock.Anything).
		Return(nil, fmt.Errorf("%w: NZD/JPY", apperrors.ErrRateNotFound)).Once()
	w = suite.do(http.MethodGet, "/api/v1/fx/snapshot/NZD/JPY?asOf=2025-03-14", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestCreateExchangeRate() {
	body := map[string]any{
		"baseCurrency":  "NZD",
		"quoteCurrency": "AUD",
		"rate":          "0.92",
		"effectiveFrom": "2025-03-14T00:00:00Z",
		"source":        "rbnz",
	}

	suite.Run("forbidden without permission", func() {
		suite.SetupTest()
		suite.allow(domain.PermissionManageRates, false)

		w := suite.do(http.MethodPost, "/api/v1/fx/rates", body)
		suite.Equal(http.StatusForbidden, w.Code)
		suite.rates.AssertNotCalled(suite.T(), "CreateExchangeRate", mock.Anything, mock.Anything, mock.Anything)
	})

	suite.Run("created", func() {
		suite.SetupTest()
		suite.allow(domain.PermissionManageRates, true)
		created := &domain.ExchangeRate{
			ExchangeRateID: uuid.NewString(),
			BaseCurrency:   "NZD",
			QuoteCurrency:  "AUD",
			Rate:           decimal.RequireFromString("0.92"),
			EffectiveFrom:  time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			Source:         "rbnz",
		}
		suite.rates.On("CreateExchangeRate", mock.Anything, mock.MatchedBy(func(r dto.CreateExchangeRateRequest) bool {
			return r.BaseCurrency == "NZD" && r.Rate.Equal(decimal.RequireFromString("0.92"))
		}), suite.actorID).Return(created, nil).Once()

		w := suite.do(http.MethodPost, "/api/v1/fx/rates", body)
		suite.Equal(http.StatusCreated, w.Code)
		var resp dto.ExchangeRateResponse
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		suite.Equal(created.ExchangeRateID, resp.ExchangeRateID)
		suite.Equal("2025-03-14", resp.EffectiveFrom)
	})

	suite.Run("duplicate", func() {
		suite.SetupTest()
		suite.allow(domain.PermissionManageRates, true)
		suite.rates.On("CreateExchangeRate", mock.Anything, mock.Anything, suite.actorID).
			Return(nil, fmt.Errorf("exchange rate NZD/AUD@2025-03-14: %w", apperrors.ErrDuplicate)).Once()

		w := suite.do(http.MethodPost, "/api/v1/fx/rates", body)
		suite.Equal(http.StatusConflict, w.Code)
	})

	suite.Run("zero rate rejected by binding", func() {
		suite.SetupTest()
		suite.allow(domain.PermissionManageRates, true)
		bad := map[string]any{
			"baseCurrency":  "NZD",
			"quoteCurrency": "AUD",
			"rate":          "0",
			"effectiveFrom": "2025-03-14T00:00:00Z",
			"source":        "rbnz",
		}

		w := suite.do(http.MethodPost, "/api/v1/fx/rates", bad)
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.rates.AssertNotCalled(suite.T(), "CreateExchangeRate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func (suite *HandlerTestSuite) TestRateCardWrites() {
	suite.allow(domain.PermissionManageRates, true)

	suite.rateCards.On("SaveRateCardItem", mock.Anything, "rc-1", mock.MatchedBy(func(r dto.SaveRateCardItemRequest) bool {
		return r.Description == "Consulting" && r.CurrencyCode == "NZD"
	}), suite.actorID).Return(&domain.RateCardItem{
		RateCardItemID: "item-1",
		RateCardID:     "rc-1",
		Description:    "Consulting",
		UnitRate:       domain.NewMoney(decimal.NewFromInt(150), "NZD"),
		IsActive:       true,
	}, nil).Once()
	w := suite.do(http.MethodPost, "/api/v1/rate-cards/rc-1/items", map[string]any{
		"description":  "Consulting",
		"unitRate":     "150",
		"currencyCode": "NZD",
	})
	suite.Equal(http.StatusCreated, w.Code)

	suite.rateCards.On("DeactivateRateCardItem", mock.Anything, "rc-1", "missing", suite.actorID).
		Return(fmt.Errorf("rate card item missing: %w", apperrors.ErrNotFound)).Once()
	w = suite.do(http.MethodDelete, "/api/v1/rate-cards/rc-1/items/missing", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	suite.rateCards.On("SetRateCardActive", mock.Anything, "rc-1", false, suite.actorID).Return(nil).Once()
	w = suite.do(http.MethodPut, "/api/v1/rate-cards/rc-1/active", map[string]any{"isActive": false})
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodPut, "/api/v1/rate-cards/rc-1/active", map[string]any{})
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.rateCards.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCacheBust() {
	suite.allow(domain.PermissionCacheAdmin, true)

	suite.cacheAdmin.On("BustFxRate", mock.Anything, "NZD", "AUD").Once()
	w := suite.do(http.MethodPost, "/api/v1/cache/bust", map[string]any{
		"kind":          "fx_rate",
		"baseCurrency":  "NZD",
		"quoteCurrency": "AUD",
	})
	suite.Equal(http.StatusNoContent, w.Code)

	suite.cacheAdmin.On("BustRateCard", mock.Anything, "rc-1").Once()
	w = suite.do(http.MethodPost, "/api/v1/cache/bust", map[string]any{"kind": "rate_card", "rateCardID": "rc-1"})
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/cache/bust", map[string]any{"kind": "rate_card"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/cache/bust", map[string]any{"kind": "everything"})
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.cacheAdmin.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestGetCurrency() {
	suite.currency.On("GetCurrency", mock.Anything, "JPY").Return(&domain.Currency{
		CurrencyCode:  "JPY",
		Symbol:        "¥",
		Name:          "Japanese Yen",
		DecimalPlaces: 0,
		IsActive:      true,
	}, nil).Once()
	suite.currency.On("GetCurrency", mock.Anything, "XXX").
		Return(nil, fmt.Errorf("%w: XXX", apperrors.ErrUnknownCurrency)).Once()

	w := suite.do(http.MethodGet, "/api/v1/currencies/jpy", nil)
	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CurrencyResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(0, resp.DecimalPlaces)

	w = suite.do(http.MethodGet, "/api/v1/currencies/XXX", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestListCurrencies() {
	suite.currencyAdm.On("ListCurrencies", mock.Anything).Return([]domain.Currency{
		{CurrencyCode: "JPY", Name: "Japanese Yen", DecimalPlaces: 0, IsActive: true},
		{CurrencyCode: "NZD", Name: "New Zealand Dollar", DecimalPlaces: 2, IsActive: true},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/currencies", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.CurrencyResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 2)
	suite.Equal("NZD", resp[1].CurrencyCode)
}

func (suite *HandlerTestSuite) TestSaveCurrency() {
	body := map[string]any{"symbol": "kr", "name": "Icelandic Krona", "decimalPlaces": 0}

	suite.Run("forbidden without permission", func() {
		suite.SetupTest()
		suite.allow(domain.PermissionManageRates, false)

		w := suite.do(http.MethodPut, "/api/v1/currencies/ISK", body)
		suite.Equal(http.StatusForbidden, w.Code)
		suite.currencyAdm.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	suite.Run("saved", func() {
		suite.SetupTest()
		suite.allow(domain.PermissionManageRates, true)
		suite.currencyAdm.On("SaveCurrency", mock.Anything, "ISK", mock.MatchedBy(func(r dto.SaveCurrencyRequest) bool {
			return r.DecimalPlaces != nil && *r.DecimalPlaces == 0 && r.Name == "Icelandic Krona"
		}), suite.actorID).Return(&domain.Currency{CurrencyCode: "ISK", Symbol: "kr", Name: "Icelandic Krona", IsActive: true}, nil).Once()

		w := suite.do(http.MethodPut, "/api/v1/currencies/isk", body)
		suite.Equal(http.StatusOK, w.Code)
		var resp dto.CurrencyResponse
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		suite.Equal("ISK", resp.CurrencyCode)
		suite.currencyAdm.AssertExpectations(suite.T())
	})

	suite.Run("scale out of range rejected by binding", func() {
		suite.SetupTest()
		suite.allow(domain.PermissionManageRates, true)

		w := suite.do(http.MethodPut, "/api/v1/currencies/ISK", map[string]any{"name": "Krona", "decimalPlaces": 6})
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.currencyAdm.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func (suite *HandlerTestSuite) TestHealth() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

// --- Run Test Suite ---
func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
