package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	auditapp "github.com/househero/backend/internal/application/audit"
	paymentapp "github.com/househero/backend/internal/application/payment"
	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/interfaces/http/dto"
	"github.com/househero/backend/internal/interfaces/http/middleware"
)

// PaymentService is the subset of the payment service the handler needs
type PaymentService interface {
	List(ctx context.Context, in paymentapp.ListInput) ([]payment.Payment, error)
	Get(ctx context.Context, id int64) (*payment.Payment, error)
	Verify(ctx context.Context, actor auditapp.Actor, id int64) (*payment.Payment, error)
	Release(ctx context.Context, actor auditapp.Actor, id int64) (*payment.Payment, error)
	Refund(ctx context.Context, actor auditapp.Actor, id int64, reason string) (*payment.Payment, error)
	Submit(ctx context.Context, actor auditapp.Actor, in paymentapp.SubmitInput) (*paymentapp.SubmitResult, error)
	ProofURL(ctx context.Context, id int64, expiresIn time.Duration) (string, time.Time, error)
}

// PaymentHandler handles escrow payment endpoints
type PaymentHandler struct {
	BaseHandler
	service       PaymentService
	maxUploadSize int64
	urlExpiry     time.Duration
}

// NewPaymentHandler creates a new PaymentHandler. maxUploadSize bounds the
// proof document; urlExpiry is the lifetime of proof download links.
func NewPaymentHandler(service PaymentService, maxUploadSize int64, urlExpiry time.Duration) *PaymentHandler {
	return &PaymentHandler{service: service, maxUploadSize: maxUploadSize, urlExpiry: urlExpiry}
}

// PaymentActionResponse wraps a payment after a state change
type PaymentActionResponse struct {
	Message string           `json:"message" example:"Payment released successfully"`
	Payment *payment.Payment `json:"payment"`
}

// RefundRequest is the body of a refund
type RefundRequest struct {
	Reason string `json:"reason" binding:"max=500" example:"Customer cancelled before work started"`
}

// SubmitPaymentResponse is returned after a customer submits a payment
type SubmitPaymentResponse struct {
	Message                 string                `json:"message" example:"Payment submitted successfully"`
	RequestID               int64                 `json:"requestId"`
	PaymentMethod           string                `json:"paymentMethod" example:"eft"`
	CustomerPaymentReceived bool                  `json:"customerPaymentReceived"`
	Status                  servicerequest.Status `json:"status"`
	Payment                 *payment.Payment      `json:"payment"`
}

// ProofURLResponse carries a presigned download link
type ProofURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PaymentListQuery holds the filters of GET /payments
type PaymentListQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=pending in_escrow released refunded"`
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Description  Admin listing of payments, newest first
// @Tags         payments
// @Produce      json
// @Param        jobId      query int    false "Service request id"
// @Param        status     query string false "Payment status" Enums(pending, in_escrow, released, refunded)
// @Param        customerId query int    false "Customer id"
// @Param        providerId query int    false "Provider id"
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Param        order_by   query string false "Sort column" Enums(created_at, updated_at, amount, status, job_id)
// @Param        order_dir  query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]payment.Payment]
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var q PaymentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	q.Normalize()

	in := paymentapp.ListInput{
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
	}
	filters := []struct {
		name string
		dst  **int64
	}{
		{"jobId", &in.JobID},
		{"customerId", &in.CustomerID},
		{"providerId", &in.ProviderID},
	}
	for _, f := range filters {
		v, ok := optionalInt64(c, f.name)
		if !ok {
			h.BadRequest(c, "Invalid "+f.name)
			return
		}
		*f.dst = v
	}

	payments, err := h.service.List(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Get godoc
// @ID           getPayment
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        id path int true "Payment id"
// @Success      200 {object} APIResponse[payment.Payment]
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Verify godoc
// @ID           verifyPayment
// @Summary      Verify a payment
// @Description  Confirms a pending payment was received and moves it to escrow
// @Tags         payments
// @Produce      json
// @Param        id path int true "Payment id"
// @Success      200 {object} APIResponse[PaymentActionResponse]
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /payments/{id}/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	h.transition(c, "Payment verified and moved to escrow", func(ctx context.Context, actor auditapp.Actor, id int64) (*payment.Payment, error) {
		return h.service.Verify(ctx, actor, id)
	})
}

// Release godoc
// @ID           releasePayment
// @Summary      Release an escrowed payment
// @Description  Pays the provider out of escrow ahead of automatic release
// @Tags         payments
// @Produce      json
// @Param        id path int true "Payment id"
// @Success      200 {object} APIResponse[PaymentActionResponse]
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /payments/{id}/release [post]
func (h *PaymentHandler) Release(c *gin.Context) {
	h.transition(c, "Payment released successfully", func(ctx context.Context, actor auditapp.Actor, id int64) (*payment.Payment, error) {
		return h.service.Release(ctx, actor, id)
	})
}

// Refund godoc
// @ID           refundPayment
// @Summary      Refund a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id      path int           true  "Payment id"
// @Param        request body RefundRequest false "Refund reason"
// @Success      200 {object} APIResponse[PaymentActionResponse]
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	var req RefundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}
	h.transition(c, "Payment refunded successfully", func(ctx context.Context, actor auditapp.Actor, id int64) (*payment.Payment, error) {
		return h.service.Refund(ctx, actor, id, req.Reason)
	})
}

func (h *PaymentHandler) transition(c *gin.Context, message string, fn func(context.Context, auditapp.Actor, int64) (*payment.Payment, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	p, err := fn(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PaymentActionResponse{Message: message, Payment: p})
}

// Submit godoc
// @ID           submitPayment
// @Summary      Submit a payment for a service request
// @Description  EFT submissions may attach a proof of payment document. Card payments are marked received immediately.
// @Tags         payments
// @Accept       multipart/form-data
// @Produce      json
// @Param        requestId      path     int    true  "Service request id"
// @Param        paymentMethod  formData string true  "Payment method" Enums(eft, credit_card)
// @Param        depositAmount  formData string false "Deposit amount"
// @Param        proofOfPayment formData file   false "Proof of payment"
// @Success      201 {object} APIResponse[SubmitPaymentResponse]
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      413 {object} dto.Response
// @Security     BearerAuth
// @Router       /payments/submit/{requestId} [post]
func (h *PaymentHandler) Submit(c *gin.Context) {
	requestID, ok := parseID(c, "requestId")
	if !ok {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	in := paymentapp.SubmitInput{
		RequestID:     requestID,
		PaymentMethod: c.PostForm("paymentMethod"),
		DepositAmount: c.PostForm("depositAmount"),
	}

	fh, err := c.FormFile("proofOfPayment")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		h.BadRequest(c, "Invalid multipart form")
		return
	default:
		if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge,
				fmt.Sprintf("Proof of payment must be at most %d bytes", h.maxUploadSize))
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.BadRequest(c, "Unable to read proof of payment")
			return
		}
		defer f.Close()
		in.Proof = &paymentapp.ProofFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	}

	result, err := h.service.Submit(c.Request.Context(), middleware.GetActor(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, SubmitPaymentResponse{
		Message:                 "Payment submitted successfully",
		RequestID:               result.RequestID,
		PaymentMethod:           result.PaymentMethod,
		CustomerPaymentReceived: result.CustomerPaymentReceived,
		Status:                  result.Status,
		Payment:                 result.Payment,
	})
}

// ProofURL godoc
// @ID           getPaymentProofUrl
// @Summary      Get a download link for a payment's proof document
// @Tags         payments
// @Produce      json
// @Param        id path int true "Payment id"
// @Success      200 {object} APIResponse[ProofURLResponse]
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /payments/{id}/proof-url [get]
func (h *PaymentHandler) ProofURL(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	url, expiresAt, err := h.service.ProofURL(c.Request.Context(), id, h.urlExpiry)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ProofURLResponse{URL: url, ExpiresAt: expiresAt})
}
