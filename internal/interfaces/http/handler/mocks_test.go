package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	auditapp "github.com/househero/backend/internal/application/audit"
	"github.com/househero/backend/internal/application/identity"
	paymentapp "github.com/househero/backend/internal/application/payment"
	pricingapp "github.com/househero/backend/internal/application/pricing"
	requestapp "github.com/househero/backend/internal/application/servicerequest"
	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/domain/pricing"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/domain/trust"
	"github.com/househero/backend/internal/infrastructure/auth"
	"github.com/househero/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// withClaims injects authenticated claims the way JWTAuth does
func withClaims(userID int64, email, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: userID, Email: email, Role: role})
		c.Next()
	}
}

func perform(r http.Handler, method, path string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) PingContext(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPricingService) ByCategory(ctx context.Context, category string) ([]pricing.Item, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Item), args.Error(1)
}

func (m *MockPricingService) Quote(ctx context.Context, selected []servicerequest.SelectedItem) (*pricingapp.Quote, error) {
	args := m.Called(ctx, selected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricingapp.Quote), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) List(ctx context.Context, in paymentapp.ListInput) ([]payment.Payment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Payment), args.Error(1)
}

func (m *MockPaymentService) Get(ctx context.Context, id int64) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) Verify(ctx context.Context, actor auditapp.Actor, id int64) (*payment.Payment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) Release(ctx context.Context, actor auditapp.Actor, id int64) (*payment.Payment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) Refund(ctx context.Context, actor auditapp.Actor, id int64, reason string) (*payment.Payment, error) {
	args := m.Called(ctx, actor, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) Submit(ctx context.Context, actor auditapp.Actor, in paymentapp.SubmitInput) (*paymentapp.SubmitResult, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.SubmitResult), args.Error(1)
}

func (m *MockPaymentService) ProofURL(ctx context.Context, id int64, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, id, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockServiceRequestService struct {
	mock.Mock
}

func (m *MockServiceRequestService) Get(ctx context.Context, id int64) (*servicerequest.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*servicerequest.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestService) ConfirmCompletion(ctx context.Context, actor auditapp.Actor, id int64) (*requestapp.ConfirmResult, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestapp.ConfirmResult), args.Error(1)
}

type MockTrustService struct {
	mock.Mock
}

func (m *MockTrustService) Get(ctx context.Context, providerID int64) (*trust.Score, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trust.Score), args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) List(ctx context.Context, filter audit.Filter) ([]audit.Event, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Event), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, in identity.LoginInput) (*identity.LoginResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken, ip string) (*identity.LoginResult, error) {
	args := m.Called(ctx, refreshToken, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken, refreshToken, ip string) {
	m.Called(ctx, accessToken, refreshToken, ip)
}

func (m *MockAuthService) Signup(ctx context.Context, in identity.SignupInput) (*identity.UserInfo, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserInfo), args.Error(1)
}
