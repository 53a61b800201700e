package paywall

import (
	"fmt"

	"go.uber.org/zap"
)

// PaywallManager wires the x402 payment lifecycle into an HTTP framework.
type PaywallManager struct {
	config    *Config
	logger    *zap.Logger
	service   *PaymentService
	framework HTTPFramework
	routes    *routeTable
	obs       *Observability
	Version   string
}

// New creates a paywall manager from the given configuration.
func New(config *Config) (*PaywallManager, error) {
	if config == nil {
		return nil, NewValidationError("config", "cannot be nil")
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	routes, err := compileRoutePatterns(config.Routes)
	if err != nil {
		return nil, err
	}

	obs := config.Observability.BuildObservability()

	facilitator := config.Facilitator
	if facilitator == nil {
		facilitator = NewHTTPFacilitatorClient(config.FacilitatorURL, config.FacilitatorTimeout, config.Logger)
	}

	receipts := config.Receipts
	if receipts == nil {
		receipts, err = NewLRUReceiptStore(config.ReceiptCacheSize)
		if err != nil {
			return nil, err
		}
	}

	service, err := NewPaymentService(facilitator, receipts, config.Logger, obs, config.PayTo, config.ReplayCacheSize)
	if err != nil {
		return nil, err
	}

	manager := &PaywallManager{
		config:    config,
		logger:    config.Logger.Named(CLASS_PAYWALL_MANAGER),
		service:   service,
		framework: config.Framework,
		routes:    routes,
		obs:       obs,
		Version:   GetProjectVersion(),
	}

	manager.logger.Info(fmt.Sprintf("[GO-PAYWALL.New] Paywall manager created (%s)", manager.Version),
		zap.String(LOG_FIELD_NETWORK, config.Network),
		zap.Int("routes", len(config.Routes)),
		zap.String("framework", config.Framework.Name()))

	return manager, nil
}

// Get returns the verified payment details for the current request, or nil
// when the route was not paywalled (or verification never ran).
func (m *PaywallManager) Get(c interface{}) *PaymentDetails {
	value := m.framework.GetContextValue(c, LOCALS_KEY_PAYMENT)
	if value == nil {
		value = m.framework.GetContextValue(c, contextKeyPaymentInfo)
	}
	if value == nil {
		return nil
	}
	details, ok := value.(*PaymentDetails)
	if !ok {
		m.logger.Error("Payment details not found in context", zap.Any("value", value))
		return nil
	}
	return details
}

// Payer returns the paying address for the current request.
func (m *PaywallManager) Payer(c interface{}) string {
	details := m.Get(c)
	if details == nil {
		return ""
	}
	return details.Payer
}

// PaymentID returns the payment id for the current request.
func (m *PaywallManager) PaymentID(c interface{}) string {
	details := m.Get(c)
	if details == nil {
		return ""
	}
	return details.PaymentID
}

// Network returns the payment network for the current request.
func (m *PaywallManager) Network(c interface{}) string {
	details := m.Get(c)
	if details == nil {
		return ""
	}
	return details.Network
}

// Amount returns the paid amount (base units) for the current request.
func (m *PaywallManager) Amount(c interface{}) string {
	details := m.Get(c)
	if details == nil {
		return ""
	}
	return details.Amount
}

// Transaction returns the settlement transaction hash, if settled.
func (m *PaywallManager) Transaction(c interface{}) string {
	details := m.Get(c)
	if details == nil {
		return ""
	}
	return details.Transaction
}

func (m *PaywallManager) Config() *Config {
	return m.config
}

func (m *PaywallManager) Logger() *zap.Logger {
	return m.logger
}

func (m *PaywallManager) Service() *PaymentService {
	return m.service
}

func (m *PaywallManager) Receipts() ReceiptRepository {
	return m.service.receipts
}
