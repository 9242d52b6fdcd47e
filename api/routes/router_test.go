package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	buyboxsvc "github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/buybox"
	creditsvc "github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/credits"
	repricingsvc "github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/repricing"
	pkgAuth "github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/auth"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/config"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/redis"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubBuyBoxService struct{}

func (stubBuyBoxService) InitializeMonitoring(ctx context.Context, input buyboxsvc.InitializeMonitoringInput) (*models.BuyBoxHistory, error) {
	return &models.BuyBoxHistory{}, nil
}

func (stubBuyBoxService) AddSnapshot(ctx context.Context, productID uuid.UUID, marketplace enums.Marketplace, snapshot types.BuyBoxSnapshot) (*models.BuyBoxHistory, error) {
	return nil, nil
}

func (stubBuyBoxService) StopMonitoring(ctx context.Context, orgID, productID uuid.UUID, marketplace enums.Marketplace) error {
	return nil
}

func (stubBuyBoxService) GetHistory(ctx context.Context, orgID, productID uuid.UUID, marketplace enums.Marketplace) (*models.BuyBoxHistory, error) {
	return &models.BuyBoxHistory{ProductID: productID, Marketplace: marketplace}, nil
}

func (stubBuyBoxService) ListHistories(ctx context.Context, orgID uuid.UUID) ([]models.BuyBoxHistory, error) {
	return nil, nil
}

func (stubBuyBoxService) ListDueForCheck(ctx context.Context, now time.Time, limit int) ([]models.BuyBoxHistory, error) {
	return nil, nil
}

func (stubBuyBoxService) CheckProduct(ctx context.Context, history *models.BuyBoxHistory) (*models.BuyBoxHistory, error) {
	return history, nil
}

type stubRepricingService struct {
	listed []uuid.UUID
}

func (s *stubRepricingService) CreateRule(ctx context.Context, orgID uuid.UUID, input repricingsvc.CreateRuleInput) (*models.RepricingRule, error) {
	return &models.RepricingRule{OrgID: orgID, Name: input.Name}, nil
}

func (s *stubRepricingService) UpdateRule(ctx context.Context, orgID, ruleID uuid.UUID, input repricingsvc.UpdateRuleInput) (*models.RepricingRule, error) {
	return &models.RepricingRule{ID: ruleID, OrgID: orgID}, nil
}

func (s *stubRepricingService) DeleteRule(ctx context.Context, orgID, ruleID uuid.UUID) error {
	return nil
}

func (s *stubRepricingService) GetRule(ctx context.Context, orgID, ruleID uuid.UUID) (*models.RepricingRule, error) {
	return &models.RepricingRule{ID: ruleID, OrgID: orgID}, nil
}

func (s *stubRepricingService) ListRules(ctx context.Context, orgID uuid.UUID) ([]models.RepricingRule, error) {
	s.listed = append(s.listed, orgID)
	return []models.RepricingRule{}, nil
}

func (s *stubRepricingService) ExecuteRuleManually(ctx context.Context, orgID, ruleID uuid.UUID) (*repricingsvc.ExecutionSummary, error) {
	return &repricingsvc.ExecutionSummary{Success: true}, nil
}

func (s *stubRepricingService) ListEventsByRule(ctx context.Context, orgID, ruleID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	return nil, nil
}

func (s *stubRepricingService) ListEventsByProduct(ctx context.Context, orgID, productID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	return nil, nil
}

func (s *stubRepricingService) ListEventsByMarketplace(ctx context.Context, orgID uuid.UUID, marketplace enums.Marketplace, limit int) ([]models.RepricingEvent, error) {
	return nil, nil
}

func (s *stubRepricingService) ListRecentEvents(ctx context.Context, orgID uuid.UUID, limit int) ([]models.RepricingEvent, error) {
	return nil, nil
}

func (s *stubRepricingService) ListEventsByDateRange(ctx context.Context, orgID uuid.UUID, start, end time.Time, limit int) ([]models.RepricingEvent, error) {
	return nil, nil
}

type stubCreditsService struct{}

func (stubCreditsService) Balance(ctx context.Context, orgID uuid.UUID) (int, error) {
	return 42, nil
}

func (stubCreditsService) HasAvailableCredits(ctx context.Context, orgID uuid.UUID, amount int) (bool, error) {
	return true, nil
}

func (stubCreditsService) UseCredits(ctx context.Context, input creditsvc.UseCreditsInput) error {
	return nil
}

func (stubCreditsService) AddCredits(ctx context.Context, input creditsvc.AddCreditsInput) error {
	return nil
}

func (stubCreditsService) ListTransactions(ctx context.Context, orgID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, repricing *stubRepricingService) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubBuyBoxService{},
		repricing,
		stubCreditsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, orgID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		OrgID:  orgID,
		Role:   enums.OrgRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveSetsEnvHeader(t *testing.T) {
	router := newTestRouter(testConfig(), &stubRepricingService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Fluxori-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-Fluxori-Env"))
	}
}

func TestAPIGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), &stubRepricingService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/repricing/rules/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestListRulesScopedToTokenOrg(t *testing.T) {
	cfg := testConfig()
	repricing := &stubRepricingService{}
	router := newTestRouter(cfg, repricing)
	orgID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/repricing/rules/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, orgID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(repricing.listed) != 1 || repricing.listed[0] != orgID {
		t.Fatalf("expected list scoped to %s, got %v", orgID, repricing.listed)
	}
}

func TestGetCreditBalance(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubRepricingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits/balance", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			Balance int `json:"balance"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Balance != 42 {
		t.Fatalf("expected balance 42 got %d", envelope.Data.Balance)
	}
}

func TestInvalidMarketplacePathRejected(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubRepricingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/buybox/"+uuid.NewString()+"/ebay", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown marketplace got %d", resp.Code)
	}
}

func TestRepricingRuleAndEventRoutes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubRepricingService{})
	token := buildToken(t, cfg, uuid.New())

	cases := []struct {
		method string
		path   string
		body   io.Reader
	}{
		{http.MethodPut, "/api/v1/repricing/rules/" + uuid.NewString(), strings.NewReader(`{"name":"Hold the box"}`)},
		{http.MethodGet, "/api/v1/repricing/products/" + uuid.NewString() + "/events", nil},
		{http.MethodGet, "/api/v1/repricing/marketplaces/amazon/events", nil},
		{http.MethodGet, "/api/v1/repricing/events/recent", nil},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, tc.body)
		req.Header.Set("Authorization", "Bearer "+token)
		if tc.body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200 got %d: %s", tc.method, tc.path, resp.Code, resp.Body.String())
		}
	}
}
