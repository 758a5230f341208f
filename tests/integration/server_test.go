package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	auditapp "github.com/househero/backend/internal/application/audit"
	identityapp "github.com/househero/backend/internal/application/identity"
	paymentapp "github.com/househero/backend/internal/application/payment"
	pricingapp "github.com/househero/backend/internal/application/pricing"
	requestapp "github.com/househero/backend/internal/application/servicerequest"
	trustapp "github.com/househero/backend/internal/application/trust"
	"github.com/househero/backend/internal/domain/identity"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/infrastructure/auth"
	"github.com/househero/backend/internal/infrastructure/cache"
	"github.com/househero/backend/internal/infrastructure/config"
	"github.com/househero/backend/internal/infrastructure/persistence"
	"github.com/househero/backend/internal/infrastructure/seed"
	"github.com/househero/backend/internal/infrastructure/storage"
	"github.com/househero/backend/internal/interfaces/http/handler"
	"github.com/househero/backend/internal/interfaces/http/middleware"
	"github.com/househero/backend/internal/interfaces/http/router"
	"github.com/househero/backend/internal/site"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "correct-horse-battery"

// TestServer is the full API wired on a migrated PostgreSQL database
type TestServer struct {
	DB       *TestDB
	Engine   *gin.Engine
	Payments *paymentapp.Service
	Requests *persistence.GormServiceRequestRepository
	Users    *persistence.GormUserRepository
	Storage  *storage.MemoryObjectStorage
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	testDB := NewTestDB(t)
	log := zap.NewNop()

	userRepo := persistence.NewGormUserRepository(testDB.DB)
	requestRepo := persistence.NewGormServiceRequestRepository(testDB.DB)
	paymentRepo := persistence.NewGormPaymentRepository(testDB.DB)
	pricingRepo := persistence.NewGormPricingRepository(testDB.DB)
	auditRepo := persistence.NewGormAuditRepository(testDB.DB)
	proofs := storage.NewMemoryObjectStorage("http://proofs.local")

	auditService := auditapp.NewService(auditRepo, log)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-key-at-least-32-bytes",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "househero-test",
	})
	authService := identityapp.NewAuthService(userRepo, jwtService, auth.NewInMemoryTokenBlacklist(), auditService, log)
	pricingService := pricingapp.NewService(pricingRepo, cache.NewMemoryCache(), time.Minute, log)
	trustService := trustapp.NewService(
		persistence.NewGormTrustScoreRepository(testDB.DB),
		persistence.NewGormReviewRepository(testDB.DB),
		requestRepo,
		persistence.NewGormProviderProfileRepository(testDB.DB),
		log,
	)
	paymentService := paymentapp.NewService(paymentRepo, requestRepo, proofs, auditService, log)
	requestService := requestapp.NewService(requestRepo, paymentService, trustService, auditService, log)

	items, err := seed.DefaultPricing()
	require.NoError(t, err)
	_, err = pricingService.Seed(context.Background(), items)
	require.NoError(t, err)

	handlers := router.Handlers{
		Health:         handler.NewHealthHandler(&persistence.Database{DB: testDB.DB}),
		Auth:           handler.NewAuthHandler(authService, false),
		Pricing:        handler.NewPricingHandler(pricingService),
		Payment:        handler.NewPaymentHandler(paymentService, 5<<20, 15*time.Minute),
		ServiceRequest: handler.NewServiceRequestHandler(requestService),
		Trust:          handler.NewTrustHandler(trustService),
		Audit:          handler.NewAuditHandler(auditService),
		Site:           handler.NewSiteHandler(site.DefaultAPIEndpoints(), site.DefaultTheme(), "House Hero", "Home services"),
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.RegisterStatic(engine, handlers)
	r := router.NewRouter(engine).Use(middleware.JWTAuth(middleware.DefaultJWTConfig(authService)))
	for _, group := range router.Routes(handlers, nil) {
		r.Register(group)
	}
	r.Setup()

	return &TestServer{
		DB:       testDB,
		Engine:   engine,
		Payments: paymentService,
		Requests: requestRepo,
		Users:    userRepo,
		Storage:  proofs,
	}
}

// Do sends a JSON request, authenticated when token is non-empty
func (s *TestServer) Do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

// Signup registers a customer or provider through the API
func (s *TestServer) Signup(t *testing.T, name, email, role, serviceType string) {
	t.Helper()

	w := s.Do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":        name,
		"email":       email,
		"password":    testPassword,
		"role":        role,
		"serviceType": serviceType,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

// CreateAdmin inserts an admin directly; signup refuses the admin role
func (s *TestServer) CreateAdmin(t *testing.T, email string) {
	t.Helper()

	admin := &identity.User{Email: email, Name: "Ops Admin", Role: identity.RoleAdmin}
	require.NoError(t, admin.SetPassword(testPassword))
	require.NoError(t, s.Users.Create(context.Background(), admin))
}

// Login returns an access token for email
func (s *TestServer) Login(t *testing.T, email string) string {
	t.Helper()

	w := s.Do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data handler.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

// CreateRequest stores an assigned job between customerEmail and provider
func (s *TestServer) CreateRequest(t *testing.T, customerEmail string, provider *identity.User) *servicerequest.ServiceRequest {
	t.Helper()

	req := &servicerequest.ServiceRequest{
		CustomerName:  "Thandi Mokoena",
		CustomerEmail: customerEmail,
		PreferredDate: time.Now().Add(72 * time.Hour).UTC(),
		PreferredTime: "09:00",
		SelectedItems: []servicerequest.SelectedItem{
			{Category: "Cleaning", Type: "Standard Clean", Quantity: 1},
		},
		CustomerTotal: decimal.NewFromInt(550),
		ProviderTotal: decimal.NewFromInt(495),
		Commission:    decimal.NewFromInt(55),
		Status:        servicerequest.StatusAssigned,
		Priority:      "normal",
	}
	if provider != nil {
		req.AssignedProviderID = &provider.ID
		req.ProviderEmail = provider.Email
	}
	require.NoError(t, s.Requests.Create(context.Background(), req))
	return req
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	return envelope.Data
}
