// Package paywall provides x402 payment middleware for Go web applications.
//
// This file contains the two-phase request lifecycle: a pre-handler payment
// check and a post-handler settlement. Settlement only happens after the
// handler produced a successful response, so a failing handler never costs
// the payer anything.
package paywall

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	x402 "github.com/mark3labs/x402-go"
	"go.uber.org/zap"
)

// Middleware returns the payment middleware for the configured framework.
// For Fiber it returns a fiber.Handler, otherwise a
// func(http.Handler) http.Handler usable with stdlib and Gorilla mux.
func (m *PaywallManager) Middleware() interface{} {
	if _, ok := m.framework.(*FiberFramework); ok {
		return m.fiberMiddleware()
	}
	return m.standardMiddleware()
}

// FiberMiddleware returns the Fiber payment middleware.
func (m *PaywallManager) FiberMiddleware() fiber.Handler {
	return m.fiberMiddleware()
}

// StandardMiddleware returns the stdlib/Gorilla mux payment middleware.
func (m *PaywallManager) StandardMiddleware() func(http.Handler) http.Handler {
	return m.standardMiddleware()
}

func (m *PaywallManager) fiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := m.framework.GetRequestMethod(c)
		path := requestPath(m.framework, c)

		route := m.routes.matchRoute(method, path)
		if route == nil {
			return c.Next()
		}

		resource := c.Protocol() + "://" + c.Hostname() + path
		requirements := m.service.BuildRequirements(route, resource)
		ctx := m.framework.GetRequestContext(c)

		header := m.framework.GetRequestHeader(c, HEADER_PAYMENT)
		if header == "" {
			m.auditPaymentAttempt(c, requirements, false, false, ErrPaymentRequired, 0)
			return m.writePaymentRequired(c, requirements, ErrPaymentRequired)
		}

		start := time.Now()
		details, err := m.service.VerifyPayment(ctx, header, requirements)
		if err != nil {
			m.auditPaymentAttempt(c, requirements, true, false, err, time.Since(start))
			return m.writePaymentRequired(c, requirements, err)
		}
		m.auditPaymentAttempt(c, requirements, true, true, nil, time.Since(start))

		m.framework.SetContextValue(c, LOCALS_KEY_PAYMENT, details)

		if err := c.Next(); err != nil {
			// Handler errored; the payer keeps their money.
			return err
		}

		status := c.Response().StatusCode()
		if status >= http.StatusBadRequest {
			m.logger.Debug("Skipping settlement for failed handler response",
				zap.Int(LOG_FIELD_STATUS_CODE, status),
				zap.String(LOG_FIELD_PAYMENT_ID, details.PaymentID))
			return nil
		}

		settlement, err := m.service.SettlePayment(ctx, details, requirements)
		if err != nil {
			// Discard the handler response: unsettled means unpaid.
			c.Response().ResetBody()
			return m.writePaymentRequired(c, requirements, err)
		}

		encoded, err := EncodeSettlementHeader(settlement)
		if err != nil {
			m.logger.Error("Failed to encode settlement header",
				zap.String(LOG_FIELD_PAYMENT_ID, details.PaymentID),
				zap.Error(err))
			return nil
		}
		m.framework.SetResponseHeader(c, HEADER_PAYMENT_RESPONSE, encoded)
		return nil
	}
}

func (m *PaywallManager) standardMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := m.framework.GetRequestMethod(r)
			path := requestPath(m.framework, r)

			route := m.routes.matchRoute(method, path)
			if route == nil {
				next.ServeHTTP(w, r)
				return
			}

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}
			resource := scheme + "://" + r.Host + path
			requirements := m.service.BuildRequirements(route, resource)
			ctx := m.framework.GetRequestContext(r)

			header := m.framework.GetRequestHeader(r, HEADER_PAYMENT)
			if header == "" {
				_ = m.writePaymentRequired(w, requirements, ErrPaymentRequired)
				return
			}

			details, err := m.service.VerifyPayment(ctx, header, requirements)
			if err != nil {
				_ = m.writePaymentRequired(w, requirements, err)
				return
			}

			m.framework.SetContextValue(r, contextKeyPaymentInfo, details)

			// Buffer the handler response so the settlement header can
			// still be set after the handler ran.
			buffered := newBufferedResponseWriter()
			next.ServeHTTP(buffered, r)

			if buffered.status >= http.StatusBadRequest {
				m.logger.Debug("Skipping settlement for failed handler response",
					zap.Int(LOG_FIELD_STATUS_CODE, buffered.status),
					zap.String(LOG_FIELD_PAYMENT_ID, details.PaymentID))
				buffered.flush(w)
				return
			}

			settlement, err := m.service.SettlePayment(ctx, details, requirements)
			if err != nil {
				// Unsettled means unpaid: the buffered response is discarded.
				_ = m.writePaymentRequired(w, requirements, err)
				return
			}

			encoded, encodeErr := EncodeSettlementHeader(settlement)
			if encodeErr == nil {
				m.framework.SetResponseHeader(buffered, HEADER_PAYMENT_RESPONSE, encoded)
			}
			buffered.flush(w)
		})
	}
}

// writePaymentRequired writes the x402 402 response through the framework
// adapter. w is a *fiber.Ctx or an http.ResponseWriter depending on the
// configured framework.
func (m *PaywallManager) writePaymentRequired(w interface{}, requirements *x402.PaymentRequirement, cause error) error {
	body := &PaymentRequiredResponse{
		X402Version: X402_VERSION,
		Error:       ErrorToMessage(cause),
		Accepts:     []*x402.PaymentRequirement{requirements},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return m.framework.WriteResponse(w, http.StatusPaymentRequired, []byte(HTTP_MSG_PAYMENT_REQUIRED))
	}
	m.framework.SetResponseHeader(w, HEADER_CONTENT_TYPE, CONTENT_TYPE_JSON)
	return m.framework.WriteResponse(w, http.StatusPaymentRequired, raw)
}

func (m *PaywallManager) auditPaymentAttempt(c *fiber.Ctx, requirements *x402.PaymentRequirement, headerProvided, valid bool, cause error, latency time.Duration) {
	outcome := OutcomeFailure
	if valid {
		outcome = OutcomeSuccess
	}
	event := &PaymentAttemptEvent{
		BaseAuditEvent: NewBaseAuditEvent(EventTypePaymentAttempt,
			ActorInfo{IPAddress: c.IP(), UserAgent: m.framework.GetRequestHeader(c, fiber.HeaderUserAgent)},
			ResourceInfo{Type: "endpoint", ID: requirements.Resource, Name: m.framework.GetRoutePath(c)},
			outcome),
		Scheme:         requirements.Scheme,
		Network:        requirements.Network,
		Amount:         requirements.MaxAmountRequired,
		HeaderProvided: headerProvided,
		Valid:          valid,
		LatencyMS:      latency.Milliseconds(),
		Endpoint:       requirements.Resource,
		HTTPMethod:     c.Method(),
	}
	if cause != nil {
		event.ErrorCode = ErrorToMessage(cause)
	}
	if err := m.obs.Audit.LogPaymentAttempt(c.UserContext(), event); err != nil {
		m.logger.Warn("Failed to log payment attempt audit event", zap.Error(err))
	}
}

// bufferedResponseWriter captures a handler's response so headers can be
// amended after the handler returned.
type bufferedResponseWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponseWriter() *bufferedResponseWriter {
	return &bufferedResponseWriter{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (b *bufferedResponseWriter) Header() http.Header {
	return b.header
}

func (b *bufferedResponseWriter) WriteHeader(status int) {
	b.status = status
}

func (b *bufferedResponseWriter) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedResponseWriter) flush(w http.ResponseWriter) {
	for key, values := range b.header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
