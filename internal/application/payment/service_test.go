package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	auditapp "github.com/househero/backend/internal/application/audit"
	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2026, 10, 18, 10, 15, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	payments *MockPaymentRepository
	requests *MockRequestRepository
	storage  *MockProofStorage
	recorder *eventRecorder
	metrics  *fakeMetrics
	logs     *observer.ObservedLogs
}

func newFixture() *fixture {
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		payments: new(MockPaymentRepository),
		requests: new(MockRequestRepository),
		storage:  new(MockProofStorage),
		recorder: &eventRecorder{},
		metrics:  &fakeMetrics{},
		logs:     logs,
	}
	f.svc = NewService(f.payments, f.requests, f.storage, f.recorder, zap.New(core), WithMetrics(f.metrics))
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func escrowed(id, jobID int64) *payment.Payment {
	return &payment.Payment{
		ID:            id,
		JobID:         jobID,
		Amount:        decimal.RequireFromString("440.00"),
		PaymentMethod: payment.MethodEFT,
		Status:        payment.StatusInEscrow,
	}
}

var admin = auditapp.Actor{UserID: int64Ptr(1), Email: "admin@homeswift.co.za", Role: "admin", IP: "10.0.0.1"}

func int64Ptr(v int64) *int64 { return &v }

func TestService_AutoRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("releases escrowed payment and flags the request", func(t *testing.T) {
		f := newFixture()
		f.payments.On("FindByID", ctx, int64(5)).Return(escrowed(5, 12), nil)
		f.payments.On("Save", ctx, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.Status == payment.StatusReleased &&
				p.ReleasedBy == "system" &&
				p.ReleasedAt != nil && p.ReleasedAt.Equal(fixedNow)
		})).Return(nil).Once()
		f.requests.On("MarkProviderPaid", ctx, int64(12)).Return(nil).Once()

		require.NoError(t, f.svc.AutoRelease(ctx, 5))

		f.payments.AssertExpectations(t)
		f.requests.AssertExpectations(t)
		assert.Equal(t, []audit.Action{audit.ActionPaymentAutoReleased}, f.recorder.actions())
		assert.Equal(t, []transition{{payment.StatusInEscrow, payment.StatusReleased, true}}, f.metrics.transitions)
	})

	t.Run("missing payment is a no-op", func(t *testing.T) {
		f := newFixture()
		f.payments.On("FindByID", ctx, int64(404)).Return(nil, nil)

		require.NoError(t, f.svc.AutoRelease(ctx, 404))

		f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.requests.AssertNotCalled(t, "MarkProviderPaid", mock.Anything, mock.Anything)
		assert.Empty(t, f.recorder.actions())
	})

	for _, status := range []payment.Status{payment.StatusPending, payment.StatusReleased, payment.StatusRefunded} {
		t.Run("status "+string(status)+" is a no-op", func(t *testing.T) {
			f := newFixture()
			p := escrowed(6, 13)
			p.Status = status
			f.payments.On("FindByID", ctx, int64(6)).Return(p, nil)

			require.NoError(t, f.svc.AutoRelease(ctx, 6))

			assert.Equal(t, status, p.Status)
			assert.Nil(t, p.ReleasedAt)
			f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			f.requests.AssertNotCalled(t, "MarkProviderPaid", mock.Anything, mock.Anything)
		})
	}

	t.Run("lookup failure is logged and returned", func(t *testing.T) {
		f := newFixture()
		f.payments.On("FindByID", ctx, int64(7)).Return(nil, errors.New("connection reset"))

		err := f.svc.AutoRelease(ctx, 7)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.Equal(t, 1, f.logs.FilterMessage("Auto-release payment error").Len())
	})

	t.Run("payment write failure stops before the request", func(t *testing.T) {
		f := newFixture()
		f.payments.On("FindByID", ctx, int64(8)).Return(escrowed(8, 14), nil)
		f.payments.On("Save", ctx, mock.Anything).Return(errors.New("deadlock"))

		err := f.svc.AutoRelease(ctx, 8)
		require.Error(t, err)
		f.requests.AssertNotCalled(t, "MarkProviderPaid", mock.Anything, mock.Anything)
		assert.Empty(t, f.recorder.actions())
	})

	t.Run("request write failure keeps the payment released", func(t *testing.T) {
		f := newFixture()
		p := escrowed(9, 15)
		f.payments.On("FindByID", ctx, int64(9)).Return(p, nil)
		f.payments.On("Save", ctx, p).Return(nil)
		f.requests.On("MarkProviderPaid", ctx, int64(15)).Return(errors.New("timeout"))

		err := f.svc.AutoRelease(ctx, 9)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
		assert.Equal(t, payment.StatusReleased, p.Status)
		f.payments.AssertNumberOfCalls(t, "Save", 1)
		assert.Equal(t, 1, f.logs.FilterMessage("Auto-release payment error").Len())
	})

	t.Run("missing request is reported to the caller", func(t *testing.T) {
		f := newFixture()
		p := escrowed(10, 99)
		f.payments.On("FindByID", ctx, int64(10)).Return(p, nil)
		f.payments.On("Save", ctx, p).Return(nil)
		f.requests.On("MarkProviderPaid", ctx, int64(99)).Return(shared.ErrNotFound)

		err := f.svc.AutoRelease(ctx, 10)
		require.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, payment.StatusReleased, p.Status)
		assert.Equal(t, payment.ReleasedBySystem, p.ReleasedBy)
		assert.Equal(t, 1, f.logs.FilterMessage("Auto-release payment error").Len())
		assert.Empty(t, f.recorder.actions())
	})
}

func TestService_AutoReleaseForJob(t *testing.T) {
	ctx := context.Background()

	t.Run("no escrowed payment", func(t *testing.T) {
		f := newFixture()
		f.payments.On("FindInEscrowByJob", ctx, int64(20)).Return(nil, nil)
		require.NoError(t, f.svc.AutoReleaseForJob(ctx, 20))
		f.payments.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("releases the job's payment", func(t *testing.T) {
		f := newFixture()
		p := escrowed(21, 20)
		f.payments.On("FindInEscrowByJob", ctx, int64(20)).Return(p, nil)
		f.payments.On("FindByID", ctx, int64(21)).Return(p, nil)
		f.payments.On("Save", ctx, p).Return(nil)
		f.requests.On("MarkProviderPaid", ctx, int64(20)).Return(nil)

		require.NoError(t, f.svc.AutoReleaseForJob(ctx, 20))
		assert.Equal(t, payment.StatusReleased, p.Status)
	})
}

func TestService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("pending payment moves into escrow", func(t *testing.T) {
		f := newFixture()
		p := escrowed(30, 31)
		p.Status = payment.StatusPending
		f.payments.On("FindByID", ctx, int64(30)).Return(p, nil)
		f.payments.On("Save", ctx, p).Return(nil)
		f.requests.On("MarkCustomerPaid", ctx, int64(31)).Return(nil)

		got, err := f.svc.Verify(ctx, admin, 30)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusInEscrow, got.Status)
		require.NotNil(t, got.CustomerPaidAt)
		assert.True(t, got.CustomerPaidAt.Equal(fixedNow))

		require.Len(t, f.recorder.events, 1)
		ev := f.recorder.events[0]
		assert.Equal(t, audit.ActionPaymentVerified, ev.Action)
		assert.Equal(t, "pending", ev.Details["previousStatus"])
		assert.Equal(t, "in_escrow", ev.Details["newStatus"])
	})

	t.Run("non admin is refused", func(t *testing.T) {
		f := newFixture()
		p := escrowed(32, 33)
		p.Status = payment.StatusPending
		f.payments.On("FindByID", ctx, int64(32)).Return(p, nil)

		_, err := f.svc.Verify(ctx, auditapp.Actor{Email: "c@x.co", Role: "customer"}, 32)
		assert.ErrorIs(t, err, payment.ErrAdminRequired)
		f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newFixture()
		f.payments.On("FindByID", ctx, int64(34)).Return(nil, nil)

		_, err := f.svc.Verify(ctx, admin, 34)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Payment not found", err.Error())
	})

	t.Run("escrowed payment cannot be verified twice", func(t *testing.T) {
		f := newFixture()
		f.payments.On("FindByID", ctx, int64(35)).Return(escrowed(35, 36), nil)

		_, err := f.svc.Verify(ctx, admin, 35)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, "Invalid transition from in_escrow to in_escrow", err.Error())
	})
}

func TestService_Release(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := escrowed(40, 41)
	f.payments.On("FindByID", ctx, int64(40)).Return(p, nil)
	f.payments.On("Save", ctx, p).Return(nil)
	f.requests.On("MarkProviderPaid", ctx, int64(41)).Return(nil)

	got, err := f.svc.Release(ctx, admin, 40)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusReleased, got.Status)
	assert.Equal(t, "admin@homeswift.co.za", got.ReleasedBy)
	assert.Equal(t, []audit.Action{audit.ActionPaymentReleased}, f.recorder.actions())
	assert.Equal(t, []transition{{payment.StatusInEscrow, payment.StatusReleased, false}}, f.metrics.transitions)
}

func TestService_Refund(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels the job and notes the reason", func(t *testing.T) {
		f := newFixture()
		p := escrowed(50, 51)
		req := &servicerequest.ServiceRequest{RequestID: 51, Status: servicerequest.StatusAssigned, AdminNotes: "Call before arriving"}
		f.payments.On("FindByID", ctx, int64(50)).Return(p, nil)
		f.payments.On("Save", ctx, p).Return(nil)
		f.requests.On("FindByID", ctx, int64(51)).Return(req, nil)
		f.requests.On("Save", ctx, req).Return(nil)

		got, err := f.svc.Refund(ctx, admin, 50, "  Provider <b>no-show</b> ")
		require.NoError(t, err)
		assert.Equal(t, payment.StatusRefunded, got.Status)
		assert.Equal(t, "Provider bno-show/b", got.RefundReason)
		assert.Equal(t, servicerequest.StatusCancelled, req.Status)
		assert.Equal(t, "Call before arriving\n[Refund Reason]: Provider bno-show/b", req.AdminNotes)
		assert.Equal(t, "Provider bno-show/b", f.recorder.events[0].Details["reason"])
	})

	t.Run("empty reason leaves notes alone", func(t *testing.T) {
		f := newFixture()
		p := escrowed(52, 53)
		p.Status = payment.StatusPending
		req := &servicerequest.ServiceRequest{RequestID: 53, Status: servicerequest.StatusPending}
		f.payments.On("FindByID", ctx, int64(52)).Return(p, nil)
		f.payments.On("Save", ctx, p).Return(nil)
		f.requests.On("FindByID", ctx, int64(53)).Return(req, nil)
		f.requests.On("Save", ctx, req).Return(nil)

		_, err := f.svc.Refund(ctx, admin, 52, "")
		require.NoError(t, err)
		assert.Empty(t, req.AdminNotes)
		assert.Equal(t, "No reason provided", f.recorder.events[0].Details["reason"])
	})

	t.Run("missing request fails after the payment is refunded", func(t *testing.T) {
		f := newFixture()
		p := escrowed(56, 57)
		f.payments.On("FindByID", ctx, int64(56)).Return(p, nil)
		f.payments.On("Save", ctx, p).Return(nil)
		f.requests.On("FindByID", ctx, int64(57)).Return(nil, nil)

		_, err := f.svc.Refund(ctx, admin, 56, "duplicate booking")
		require.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, payment.StatusRefunded, p.Status)
		f.requests.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.recorder.actions())
	})

	t.Run("released payment cannot be refunded", func(t *testing.T) {
		f := newFixture()
		p := escrowed(54, 55)
		p.Status = payment.StatusReleased
		f.payments.On("FindByID", ctx, int64(54)).Return(p, nil)

		_, err := f.svc.Refund(ctx, admin, 54, "late")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.requests.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	customer := auditapp.Actor{UserID: int64Ptr(77), Email: "thandi@example.com", Role: "customer"}

	newRequest := func() *servicerequest.ServiceRequest {
		return &servicerequest.ServiceRequest{
			RequestID:          60,
			Status:             servicerequest.StatusPending,
			CustomerTotal:      decimal.RequireFromString("880.00"),
			AssignedProviderID: int64Ptr(9),
		}
	}

	t.Run("eft with proof uploads and notes the key", func(t *testing.T) {
		f := newFixture()
		req := newRequest()
		wantKey := "payments/60_1792318500000_pop_slip__1_.pdf"
		f.requests.On("FindByID", ctx, int64(60)).Return(req, nil)
		f.storage.On("Upload", ctx, wantKey, mock.Anything, int64(4), "application/pdf").Return(nil)
		f.requests.On("Save", ctx, req).Return(nil)
		f.payments.On("Create", ctx, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.Status == payment.StatusPending &&
				p.JobID == 60 &&
				p.Amount.Equal(decimal.NewFromInt(880)) &&
				p.DepositAmount.Equal(decimal.NewFromInt(100)) &&
				*p.CustomerID == 77 && *p.ProviderID == 9 &&
				p.ProofOfPaymentURL == wantKey
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*payment.Payment).ID = 61
		}).Return(nil)

		res, err := f.svc.Submit(ctx, customer, SubmitInput{
			RequestID:     60,
			PaymentMethod: "eft",
			DepositAmount: "100",
			Proof: &ProofFile{
				Filename:    "pop slip (1).pdf",
				ContentType: "application/pdf",
				Size:        4,
				Body:        strings.NewReader("%PDF"),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, wantKey, res.ProofKey)
		assert.False(t, res.CustomerPaymentReceived)
		assert.Equal(t, servicerequest.StatusPending, res.Status)
		assert.Equal(t, int64(61), res.Payment.ID)
		assert.Equal(t, "[EFT Payment Proof]: "+wantKey, req.AdminNotes)
		assert.Equal(t, []audit.Action{audit.ActionPaymentSubmitted}, f.recorder.actions())
	})

	t.Run("credit card is marked received", func(t *testing.T) {
		f := newFixture()
		req := newRequest()
		f.requests.On("FindByID", ctx, int64(60)).Return(req, nil)
		f.requests.On("Save", ctx, req).Return(nil)
		f.payments.On("Create", ctx, mock.Anything).Return(nil)

		res, err := f.svc.Submit(ctx, customer, SubmitInput{RequestID: 60, PaymentMethod: "credit_card"})
		require.NoError(t, err)
		assert.True(t, res.CustomerPaymentReceived)
		assert.Equal(t, "credit_card", req.PaymentMethod)
		assert.Empty(t, req.AdminNotes)
		f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Submit(ctx, customer, SubmitInput{RequestID: 60})
		assert.ErrorIs(t, err, ErrMethodRequired)
		assert.Equal(t, "Payment method is required", err.Error())

		_, err = f.svc.Submit(ctx, customer, SubmitInput{RequestID: 60, PaymentMethod: "cash"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = f.svc.Submit(ctx, customer, SubmitInput{RequestID: 60, PaymentMethod: "eft", DepositAmount: "-5"})
		assert.ErrorIs(t, err, ErrInvalidDeposit)
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newFixture()
		f.requests.On("FindByID", ctx, int64(404)).Return(nil, nil)

		_, err := f.svc.Submit(ctx, customer, SubmitInput{RequestID: 404, PaymentMethod: "eft"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Service request not found", err.Error())
	})

	t.Run("upload failure aborts", func(t *testing.T) {
		f := newFixture()
		f.requests.On("FindByID", ctx, int64(60)).Return(newRequest(), nil)
		f.storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

		_, err := f.svc.Submit(ctx, customer, SubmitInput{
			RequestID:     60,
			PaymentMethod: "eft",
			Proof:         &ProofFile{Filename: "a.png", Body: strings.NewReader("x")},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
		f.requests.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	status := payment.StatusInEscrow
	f.payments.On("FindAll", ctx, payment.Filter{
		Filter: shared.Filter{Page: 1, PageSize: 20},
		JobID:  int64Ptr(3),
		Status: &status,
	}).Return([]payment.Payment{*escrowed(1, 3)}, nil)

	got, err := f.svc.List(ctx, ListInput{JobID: int64Ptr(3), Status: "in_escrow", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.svc.List(ctx, ListInput{Status: "lost"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_ProofURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := escrowed(70, 71)
	p.ProofOfPaymentURL = "payments/71_1_slip.pdf"
	f.payments.On("FindByID", ctx, int64(70)).Return(p, nil)
	f.storage.On("GenerateDownloadURL", ctx, "payments/71_1_slip.pdf", 5*time.Minute).
		Return("https://s3.example/slip", fixedNow.Add(5*time.Minute), nil)

	url, _, err := f.svc.ProofURL(ctx, 70, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example/slip", url)

	f.payments.On("FindByID", ctx, int64(72)).Return(escrowed(72, 73), nil)
	_, _, err = f.svc.ProofURL(ctx, 72, 0)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProofKey(t *testing.T) {
	at := time.UnixMilli(1760782500000)
	assert.Equal(t, "payments/12_1760782500000_my_proof_.png", ProofKey(12, at, "my proof!.png"))
	assert.Equal(t, "payments/12_1760782500000_a-b.c", ProofKey(12, at, "a-b.c"))
}
