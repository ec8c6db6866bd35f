package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/SscSPs/pricing_engine/internal/core/services"
	"github.com/SscSPs/pricing_engine/internal/dto"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type RateCardServiceTestSuite struct {
	suite.Suite
	mockRepo         *MockRateCardRepository
	mockCurrencyRepo *MockCurrencyRepository
	mockAudit        *MockAuditLogger
	clock            *clockwork.FakeClock
	service          services.RateCardService
}

func (suite *RateCardServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockRateCardRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockAudit = new(MockAuditLogger)
	suite.clock = clockwork.NewFakeClockAt(testDate.Add(9 * time.Hour))

	c := newTestCache(suite.clock)
	policy := services.DefaultCachePolicy()
	currencies := services.NewCurrencyService(suite.mockCurrencyRepo, new(MockExchangeRateRepository), c, policy)
	suite.service = services.NewRateCardService(suite.mockRepo, c, policy,
		services.WithRateCardWriteDeps(currencies, services.NewCacheAdminService(c), suite.mockAudit),
		services.WithRateCardClock(suite.clock),
	)

	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "NZD").Return(activeCurrency("NZD", 2), nil).Maybe()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "JPY").Return(activeCurrency("JPY", 0), nil).Maybe()
	suite.mockAudit.On("Record", mock.Anything, mock.Anything).Maybe()
}

func TestRateCardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RateCardServiceTestSuite))
}

func card(id string, isDefault bool, from time.Time) domain.RateCard {
	return domain.RateCard{RateCardID: id, OrganizationID: "org1", IsActive: true, IsDefault: isDefault, EffectiveFrom: from}
}

func item(id, category, description, rate string, created time.Time) domain.RateCardItem {
	it := domain.RateCardItem{
		RateCardItemID: id,
		RateCardID:     "rc1",
		Description:    description,
		UnitRate:       money(rate, "NZD"),
		IsActive:       true,
		AuditFields:    domain.AuditFields{CreatedAt: created},
	}
	if category != "" {
		it.ServiceCategoryID = strPtr(category)
	}
	return it
}

// --- Test Cases ---

func (suite *RateCardServiceTestSuite) TestGetActiveRateCard_Selection() {
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	expired := card("rc-expired", true, jan)
	until := feb
	expired.EffectiveUntil = &until

	cases := []struct {
		name     string
		cards    []domain.RateCard
		expected string
	}{
		{"default wins over newer", []domain.RateCard{card("rc-b", false, feb), card("rc-a", true, jan)}, "rc-a"},
		{"latest effective date", []domain.RateCard{card("rc-a", false, jan), card("rc-b", false, feb)}, "rc-b"},
		{"smallest id on full tie", []domain.RateCard{card("rc-z", false, jan), card("rc-m", false, jan)}, "rc-m"},
		{"expired card skipped", []domain.RateCard{expired, card("rc-live", false, jan)}, "rc-live"},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			suite.mockRepo.On("FindRateCardsCovering", mock.Anything, "org1", testDate).Return(tc.cards, nil).Once()

			selected, err := suite.service.GetActiveRateCard(context.Background(), "org1", testDate.Add(10*time.Hour))
			suite.Require().NoError(err)
			suite.Equal(tc.expected, selected.RateCardID)
		})
	}
}

func (suite *RateCardServiceTestSuite) TestGetActiveRateCard_NoneIsBatchFatal() {
	suite.mockRepo.On("FindRateCardsCovering", mock.Anything, "org1", testDate).Return([]domain.RateCard{}, nil).Twice()

	for range 2 {
		_, err := suite.service.GetActiveRateCard(context.Background(), "org1", testDate)
		suite.ErrorIs(err, apperrors.ErrNoActiveRateCard)
	}
	// never cached as a negative result
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RateCardServiceTestSuite) TestGetItems_ActiveOnlyNewestFirst() {
	older := item("i-old", "dev", "Development", "120.00", testDate.AddDate(0, -1, 0))
	newer := item("i-new", "dev", "Development", "150.00", testDate)
	inactive := item("i-off", "dev", "Development", "99.00", testDate.AddDate(0, 0, 1))
	inactive.IsActive = false
	suite.mockRepo.On("ListRateCardItems", mock.Anything, "rc1").Return([]domain.RateCardItem{older, inactive, newer}, nil).Once()

	items, err := suite.service.GetItems(context.Background(), "rc1")

	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.Equal("i-new", items[0].RateCardItemID)
	suite.Equal("i-old", items[1].RateCardItemID)
}

func (suite *RateCardServiceTestSuite) TestFindByCategory_TieBreak() {
	a := item("i-b", "dev", "Development", "150.00", testDate)
	b := item("i-a", "dev", "Development", "140.00", testDate)
	c := item("i-c", "dev", "Development", "100.00", testDate.AddDate(0, 0, -10))
	suite.mockRepo.On("ListRateCardItems", mock.Anything, "rc1").Return([]domain.RateCardItem{c, a, b}, nil).Once()

	found, err := suite.service.FindByCategory(context.Background(), "rc1", "dev")
	suite.Require().NoError(err)
	suite.Equal("i-a", found.RateCardItemID)

	missing, err := suite.service.FindByCategory(context.Background(), "rc1", "unknown-cat")
	suite.Require().NoError(err)
	suite.Nil(missing)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RateCardServiceTestSuite) TestFindByDescription() {
	items := []domain.RateCardItem{
		item("i-dev", "", "Backend development hours", "150.00", testDate),
		item("i-design", "", "UX design workshop", "180.00", testDate),
	}
	suite.mockRepo.On("ListRateCardItems", mock.Anything, "rc1").Return(items, nil).Once()

	found, err := suite.service.FindByDescription(context.Background(), "rc1", "backend development")
	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal("i-dev", found.RateCardItemID)

	none, err := suite.service.FindByDescription(context.Background(), "rc1", "catering")
	suite.Require().NoError(err)
	suite.Nil(none)
}

func (suite *RateCardServiceTestSuite) TestSaveRateCardItem_BustsItems() {
	ctx := context.Background()
	before := item("i-1", "dev", "Development", "150.00", testDate.AddDate(0, -1, 0))
	suite.mockRepo.On("ListRateCardItems", mock.Anything, "rc1").Return([]domain.RateCardItem{before}, nil).Once()

	found, err := suite.service.FindByCategory(ctx, "rc1", "dev")
	suite.Require().NoError(err)
	suite.True(found.UnitRate.Amount.Equal(dec("150.00")))

	suite.mockRepo.On("FindRateCardByID", mock.Anything, "rc1").Return(&domain.RateCard{RateCardID: "rc1", OrganizationID: "org1"}, nil).Once()
	suite.mockRepo.On("SaveRateCardItem", mock.Anything, mock.MatchedBy(func(i domain.RateCardItem) bool {
		return i.RateCardID == "rc1" && i.RateCardItemID != "" && i.UnitRate.Currency == "NZD" && i.CreatedBy == "u1"
	})).Return(storedAs(time.Time{}), nil).Once()

	saved, err := suite.service.SaveRateCardItem(ctx, "rc1", dto.SaveRateCardItemRequest{
		ServiceCategoryID: strPtr("dev"),
		Description:       "Development",
		UnitRate:          dec("175.00"),
		CurrencyCode:      "nzd",
	}, "u1")
	suite.Require().NoError(err)

	after := *saved
	suite.mockRepo.On("ListRateCardItems", mock.Anything, "rc1").Return([]domain.RateCardItem{before, after}, nil).Once()

	found, err = suite.service.FindByCategory(ctx, "rc1", "dev")
	suite.Require().NoError(err)
	suite.Equal(saved.RateCardItemID, found.RateCardItemID)
	suite.True(found.UnitRate.Amount.Equal(dec("175.00")))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RateCardServiceTestSuite) TestSaveRateCardItem_UpdateKeepsStoredCreatedAt() {
	ctx := context.Background()
	original := testDate.AddDate(0, -2, 0)
	suite.mockRepo.On("FindRateCardByID", mock.Anything, "rc1").Return(&domain.RateCard{RateCardID: "rc1", OrganizationID: "org1"}, nil).Once()
	suite.mockRepo.On("SaveRateCardItem", mock.Anything, mock.MatchedBy(func(i domain.RateCardItem) bool {
		return i.RateCardItemID == "i-1"
	})).Return(storedAs(original), nil).Once()

	var audited domain.AuditEntry
	audit := new(MockAuditLogger)
	audit.On("Record", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		audited = args.Get(1).(domain.AuditEntry)
	}).Once()
	c := newTestCache(suite.clock)
	policy := services.DefaultCachePolicy()
	svc := services.NewRateCardService(suite.mockRepo, c, policy,
		services.WithRateCardWriteDeps(services.NewCurrencyService(suite.mockCurrencyRepo, new(MockExchangeRateRepository), c, policy), services.NewCacheAdminService(c), audit),
		services.WithRateCardClock(suite.clock),
	)

	saved, err := svc.SaveRateCardItem(ctx, "rc1", dto.SaveRateCardItemRequest{
		RateCardItemID: "i-1",
		Description:    "Development",
		UnitRate:       dec("180.00"),
		CurrencyCode:   "NZD",
	}, "u1")

	suite.Require().NoError(err)
	suite.Equal(original, saved.CreatedAt)
	suite.Equal(suite.clock.Now().UTC(), saved.LastUpdatedAt)
	suite.Equal(original.Format(time.RFC3339), audited.Notes["created_at"])
}

func (suite *RateCardServiceTestSuite) TestSaveRateCardItem_RejectsExcessScale() {
	suite.mockRepo.On("FindRateCardByID", mock.Anything, "rc1").Return(&domain.RateCard{RateCardID: "rc1", OrganizationID: "org1"}, nil).Once()

	_, err := suite.service.SaveRateCardItem(context.Background(), "rc1", dto.SaveRateCardItemRequest{
		Description:  "Translation",
		UnitRate:     dec("1500.5"),
		CurrencyCode: "JPY",
	}, "u1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveRateCardItem", mock.Anything, mock.Anything)
}

func (suite *RateCardServiceTestSuite) TestSaveRateCardItem_UnknownCard() {
	suite.mockRepo.On("FindRateCardByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.SaveRateCardItem(context.Background(), "missing", dto.SaveRateCardItemRequest{
		Description: "x", UnitRate: dec("1"), CurrencyCode: "NZD",
	}, "u1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RateCardServiceTestSuite) TestDeactivateRateCardItem_NotFound() {
	suite.mockRepo.On("DeactivateRateCardItem", mock.Anything, "rc1", "i-x", "u1").Return(apperrors.ErrNotFound).Once()

	err := suite.service.DeactivateRateCardItem(context.Background(), "rc1", "i-x", "u1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RateCardServiceTestSuite) TestSetRateCardActive_BustsActiveSelection() {
	ctx := context.Background()
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	suite.mockRepo.On("FindRateCardsCovering", mock.Anything, "org1", testDate).Return([]domain.RateCard{card("rc1", true, jan)}, nil).Once()

	selected, err := suite.service.GetActiveRateCard(ctx, "org1", testDate)
	suite.Require().NoError(err)
	suite.Equal("rc1", selected.RateCardID)

	suite.mockRepo.On("FindRateCardByID", mock.Anything, "rc1").Return(&domain.RateCard{RateCardID: "rc1", OrganizationID: "org1"}, nil).Once()
	suite.mockRepo.On("SetRateCardActive", mock.Anything, "rc1", false, "u1").Return(nil).Once()
	suite.Require().NoError(suite.service.SetRateCardActive(ctx, "rc1", false, "u1"))

	suite.mockRepo.On("FindRateCardsCovering", mock.Anything, "org1", testDate).Return([]domain.RateCard{}, nil).Once()
	_, err = suite.service.GetActiveRateCard(ctx, "org1", testDate)
	suite.ErrorIs(err, apperrors.ErrNoActiveRateCard)
	suite.mockRepo.AssertExpectations(suite.T())
}
