package payment

import (
	"context"
	"io"
	"sync"
	"time"

	auditapp "github.com/househero/backend/internal/application/audit"
	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id int64) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindInEscrowByJob(ctx context.Context, jobID int64) (*payment.Payment, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter payment.Filter) ([]payment.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindEscrowedForCompletedJobs(ctx context.Context, limit int) ([]payment.Payment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) FindByID(ctx context.Context, requestID int64) (*servicerequest.ServiceRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*servicerequest.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) FindByProvider(ctx context.Context, providerID int64, statuses []servicerequest.Status) ([]servicerequest.ServiceRequest, error) {
	args := m.Called(ctx, providerID, statuses)
	return args.Get(0).([]servicerequest.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) Create(ctx context.Context, r *servicerequest.ServiceRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRequestRepository) Save(ctx context.Context, r *servicerequest.ServiceRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRequestRepository) MarkProviderPaid(ctx context.Context, requestID int64) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockRequestRepository) MarkCustomerPaid(ctx context.Context, requestID int64) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

type MockProofStorage struct {
	mock.Mock
}

func (m *MockProofStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, body, size, contentType)
	return args.Error(0)
}

func (m *MockProofStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type recordedEvent struct {
	Actor        auditapp.Actor
	Action       audit.Action
	ResourceType string
	ResourceID   *int64
	Details      map[string]any
}

// eventRecorder keeps audit events in memory
type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) Log(_ context.Context, actor auditapp.Actor, action audit.Action, resourceType string, resourceID *int64, details map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{actor, action, resourceType, resourceID, details})
}

func (r *eventRecorder) actions() []audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Action, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type transition struct {
	From, To  payment.Status
	Automatic bool
}

type fakeMetrics struct {
	transitions []transition
}

func (f *fakeMetrics) RecordTransition(_ context.Context, from, to payment.Status, automatic bool) {
	f.transitions = append(f.transitions, transition{from, to, automatic})
}
