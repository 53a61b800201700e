// Package paywall provides x402 payment middleware for Go web applications.
//
// This file exposes optional read-only HTTP routes over the receipt store:
// listing settled payments, fetching a single receipt and reporting the
// module version. Registration is opt-in; the middleware works without it.
package paywall

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DEFAULT_RECEIPT_LIST_LIMIT = 50
	MAX_RECEIPT_LIST_LIMIT     = 500
)

// ReceiptListResponse is the envelope returned by the receipt list route.
type ReceiptListResponse struct {
	Receipts []*PaymentReceipt `json:"receipts"`
	Total    int               `json:"total"`
	Offset   int               `json:"offset"`
	Limit    int               `json:"limit"`
}

// VersionResponse reports the module version.
type VersionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// RegisterReceiptRoutes mounts the receipt routes on a Fiber router. The
// caller decides where and behind which auth these live.
func RegisterReceiptRoutes(group fiber.Router, manager *PaywallManager) {
	group.Get(PATH_RECEIPTS, listReceipts(manager))
	group.Get(PATH_RECEIPTS_ID, getReceipt(manager))
	group.Get(PATH_VERSION, getVersion(manager))
}

func listReceipts(manager *PaywallManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := parseQueryInt(c.Query("offset"), 0)
		limit := parseQueryInt(c.Query("limit"), DEFAULT_RECEIPT_LIST_LIMIT)
		if limit > MAX_RECEIPT_LIST_LIMIT {
			limit = MAX_RECEIPT_LIST_LIMIT
		}

		receipts, total, err := manager.Receipts().List(c.UserContext(), offset, limit)
		if err != nil {
			return c.Status(ErrorToHTTPStatus(err)).JSON(NewErrorResponse(err))
		}

		return c.JSON(&ReceiptListResponse{
			Receipts: receipts,
			Total:    total,
			Offset:   offset,
			Limit:    limit,
		})
	}
}

func getReceipt(manager *PaywallManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		paymentID := c.Params("id")
		if paymentID == "" {
			err := NewValidationError("id", "cannot be empty")
			return c.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(err))
		}

		receipt, err := manager.Receipts().GetByPaymentID(c.UserContext(), paymentID)
		if err != nil {
			return c.Status(ErrorToHTTPStatus(err)).JSON(NewErrorResponse(err))
		}

		return c.JSON(receipt)
	}
}

func getVersion(manager *PaywallManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(&VersionResponse{
			Name:    PACKAGE_NAME,
			Version: manager.Version,
		})
	}
}

func parseQueryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
