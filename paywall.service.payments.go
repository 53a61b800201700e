// Package paywall provides x402 payment middleware for Go web applications.
//
// This file contains the business logic service for payment processing.
// Following clean architecture, this service is independent of HTTP frameworks.
// Verification and settlement themselves are delegated to the facilitator;
// the service owns orchestration, replay guarding and receipt tracking.
package paywall

import (
	"context"
	"math/big"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	x402 "github.com/mark3labs/x402-go"
	"go.uber.org/zap"
)

// PaymentService handles the payment lifecycle for protected requests.
// This service is framework-agnostic and can be used with any HTTP framework.
type PaymentService struct {
	facilitator FacilitatorClient
	receipts    ReceiptRepository
	replayGuard *lru.Cache[string, struct{}]
	logger      *zap.Logger
	obs         *Observability
	payTo       string
}

// NewPaymentService creates a new payment service.
func NewPaymentService(facilitator FacilitatorClient, receipts ReceiptRepository, logger *zap.Logger, obs *Observability, payTo string, replayCacheSize int) (*PaymentService, error) {
	if facilitator == nil {
		return nil, ErrFacilitatorRequired
	}
	if receipts == nil {
		return nil, NewValidationError("receipts", "cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if obs == nil {
		obs = NewObservability(nil, nil, nil)
	}
	if replayCacheSize <= 0 {
		replayCacheSize = DEFAULT_REPLAY_CACHE_SIZE
	}

	replayGuard, err := lru.New[string, struct{}](replayCacheSize)
	if err != nil {
		return nil, NewInternalError("replay_guard", err)
	}

	return &PaymentService{
		facilitator: facilitator,
		receipts:    receipts,
		replayGuard: replayGuard,
		logger:      logger.Named(CLASS_PAYMENT_SERVICE),
		obs:         obs,
		payTo:       payTo,
	}, nil
}

// BuildRequirements builds the x402 payment requirement advertised for a
// route. resource is the canonical URL of the protected resource.
func (s *PaymentService) BuildRequirements(route *RouteConfig, resource string) *x402.PaymentRequirement {
	return &x402.PaymentRequirement{
		Scheme:            DEFAULT_SCHEME,
		Network:           route.Network,
		MaxAmountRequired: route.Price,
		Resource:          resource,
		Description:       route.Description,
		MimeType:          route.MimeType,
		PayTo:             s.payTo,
		MaxTimeoutSeconds: route.MaxTimeoutSeconds,
		Asset:             route.Asset,
	}
}

// VerifyPayment decodes and verifies the X-Payment header against the
// route's requirement. On success the returned PaymentDetails carry the
// decoded payload for later settlement.
func (s *PaymentService) VerifyPayment(ctx context.Context, header string, requirements *x402.PaymentRequirement) (*PaymentDetails, error) {
	start := time.Now()

	payload, err := DecodePaymentHeader(header)
	if err != nil {
		s.logger.Debug("Malformed payment header", zap.Error(err))
		s.obs.Metrics.RecordPaymentError(ctx, "malformed_header", map[string]string{"endpoint": requirements.Resource})
		return nil, err
	}

	if payload.Scheme != requirements.Scheme {
		s.obs.Metrics.RecordPaymentError(ctx, "scheme_mismatch", map[string]string{"endpoint": requirements.Resource})
		return nil, WrapErrorf(ErrUnsupportedScheme, "scheme %q", payload.Scheme)
	}
	if payload.Network != requirements.Network {
		s.obs.Metrics.RecordPaymentError(ctx, "network_mismatch", map[string]string{"endpoint": requirements.Resource})
		return nil, WrapErrorf(ErrUnsupportedNetwork, "network %q", payload.Network)
	}

	// In-process replay guard. The facilitator remains the authoritative
	// double-spend check; this stops the obvious header reuse cheaply.
	digest := PaymentDigest(header)
	if _, seen := s.replayGuard.Get(digest); seen {
		s.logger.Warn("Replayed payment rejected",
			zap.String(LOG_FIELD_NETWORK, payload.Network),
			zap.String(LOG_FIELD_RESOURCE, requirements.Resource))
		s.obs.Metrics.RecordReplayRejected(ctx, payload.Network)
		s.auditSecurityEvent(ctx, payload.Network, requirements.Resource, digest)
		return nil, ErrPaymentReplayed
	}

	result, err := s.facilitator.Verify(ctx, payload, requirements)
	if err != nil {
		s.logger.Error("Facilitator verification failed",
			zap.String(LOG_FIELD_RESOURCE, requirements.Resource),
			zap.Error(err))
		s.obs.Metrics.RecordOperationError(ctx, OPERATION_VERIFY_PAYMENT, "facilitator_error")
		return nil, err
	}
	if !result.IsValid {
		s.logger.Debug("Payment rejected by facilitator",
			zap.String("invalid_reason", result.InvalidReason),
			zap.String(LOG_FIELD_RESOURCE, requirements.Resource))
		s.obs.Metrics.RecordPaymentAttempt(ctx, false, time.Since(start), map[string]string{"network": payload.Network})
		if result.InvalidReason != "" {
			return nil, WrapError(ErrVerificationFailed, result.InvalidReason)
		}
		return nil, ErrVerificationFailed
	}

	s.replayGuard.Add(digest, struct{}{})

	paymentID, err := NewPaymentID()
	if err != nil {
		return nil, err
	}

	details := &PaymentDetails{
		PaymentID:  paymentID,
		Payer:      result.Payer,
		Scheme:     payload.Scheme,
		Network:    payload.Network,
		Amount:     requirements.MaxAmountRequired,
		Asset:      requirements.Asset,
		Resource:   requirements.Resource,
		Payload:    payload,
		VerifiedAt: time.Now().UTC(),
	}

	s.logger.Info("Payment verified",
		zap.String(LOG_FIELD_PAYMENT_ID, details.PaymentID),
		zap.String(LOG_FIELD_PAYER, details.Payer),
		zap.String(LOG_FIELD_NETWORK, details.Network),
		zap.String(LOG_FIELD_AMOUNT, details.Amount),
		zap.String(LOG_FIELD_RESOURCE, details.Resource))
	s.obs.Metrics.RecordPaymentAttempt(ctx, true, time.Since(start), map[string]string{"network": details.Network})

	return details, nil
}

// SettlePayment settles a verified payment and records the receipt. Called
// post-handler, only for successful responses.
func (s *PaymentService) SettlePayment(ctx context.Context, details *PaymentDetails, requirements *x402.PaymentRequirement) (*SettleResponse, error) {
	if details == nil || details.Payload == nil {
		return nil, NewValidationError("details", "missing verified payment")
	}

	start := time.Now()

	result, err := s.facilitator.Settle(ctx, details.Payload, requirements)
	if err != nil {
		s.logger.Error("Facilitator settlement failed",
			zap.String(LOG_FIELD_PAYMENT_ID, details.PaymentID),
			zap.Error(err))
		s.obs.Metrics.RecordSettlement(ctx, false, time.Since(start), map[string]string{"network": details.Network})
		s.recordReceipt(ctx, details, &SettleResponse{Success: false, ErrorReason: ERROR_FACILITATOR_UNREACHABLE})
		return nil, err
	}

	if result.Success {
		details.Settled = true
		details.SettledAt = time.Now().UTC()
		details.Transaction = result.Transaction
		if amount, parseErr := ParseAmount(details.Amount); parseErr == nil {
			baseUnits, _ := new(big.Float).SetInt(amount).Float64()
			s.obs.Metrics.RecordRevenue(ctx, details.Network, details.Asset, baseUnits)
		}
	}

	s.obs.Metrics.RecordSettlement(ctx, result.Success, time.Since(start), map[string]string{"network": details.Network})
	s.auditSettlement(ctx, details, result, time.Since(start))
	s.recordReceipt(ctx, details, result)

	if !result.Success {
		s.logger.Warn("Settlement rejected",
			zap.String(LOG_FIELD_PAYMENT_ID, details.PaymentID),
			zap.String("error_reason", result.ErrorReason))
		if result.ErrorReason != "" {
			return result, WrapError(ErrSettlementFailed, result.ErrorReason)
		}
		return result, ErrSettlementFailed
	}

	s.logger.Info("Payment settled",
		zap.String(LOG_FIELD_PAYMENT_ID, details.PaymentID),
		zap.String(LOG_FIELD_TRANSACTION, result.Transaction),
		zap.String(LOG_FIELD_NETWORK, details.Network))

	return result, nil
}

// recordReceipt persists the settlement outcome. Storage failures are
// logged, not surfaced: the payment itself already succeeded or failed.
func (s *PaymentService) recordReceipt(ctx context.Context, details *PaymentDetails, result *SettleResponse) {
	receiptID, err := NewReceiptID()
	if err != nil {
		s.logger.Error("Failed to generate receipt id", zap.Error(err))
		return
	}

	receipt := &PaymentReceipt{
		ReceiptID:   receiptID,
		PaymentID:   details.PaymentID,
		Payer:       details.Payer,
		Network:     details.Network,
		Scheme:      details.Scheme,
		Amount:      details.Amount,
		Asset:       details.Asset,
		Resource:    details.Resource,
		Transaction: result.Transaction,
		Success:     result.Success,
		ErrorReason: result.ErrorReason,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.receipts.Store(ctx, receipt); err != nil {
		s.logger.Error("Failed to store receipt",
			zap.String(LOG_FIELD_PAYMENT_ID, details.PaymentID),
			zap.Error(err))
		s.obs.Metrics.RecordOperationError(ctx, OPERATION_RECORD_RECEIPT, "storage_error")
	}
}

func (s *PaymentService) auditSettlement(ctx context.Context, details *PaymentDetails, result *SettleResponse, latency time.Duration) {
	outcome := OutcomeFailure
	if result.Success {
		outcome = OutcomeSuccess
	}
	event := &SettlementEvent{
		BaseAuditEvent: NewBaseAuditEvent(EventTypeSettlement,
			ActorInfo{Payer: details.Payer},
			ResourceInfo{Type: "endpoint", ID: details.Resource},
			outcome),
		PaymentID:   details.PaymentID,
		Transaction: result.Transaction,
		Network:     details.Network,
		Amount:      details.Amount,
		Asset:       details.Asset,
		Success:     result.Success,
		ErrorReason: result.ErrorReason,
		LatencyMS:   latency.Milliseconds(),
	}
	if err := s.obs.Audit.LogSettlement(ctx, event); err != nil {
		s.logger.Warn("Failed to log settlement audit event", zap.Error(err))
	}
}

func (s *PaymentService) auditSecurityEvent(ctx context.Context, network, resource, digest string) {
	event := &SecurityEvent{
		BaseAuditEvent: NewBaseAuditEvent(EventTypeSecurityBlocked,
			ActorInfo{},
			ResourceInfo{Type: "endpoint", ID: resource},
			OutcomeBlocked),
		ThreatType: ThreatTypeReplay,
		Severity:   SeverityMedium,
		Details:    ERROR_PAYMENT_REPLAYED,
		Indicators: []string{digest},
	}
	event.Metadata["network"] = network
	if err := s.obs.Audit.LogSecurityEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to log security audit event", zap.Error(err))
	}
}
