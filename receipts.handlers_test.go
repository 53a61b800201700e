package paywall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReceiptRoutes(t *testing.T) (*fiber.App, *mockReceiptRepository) {
	t.Helper()
	manager, _, receipts := setupManagerTest(t, &FiberFramework{})

	app := fiber.New()
	RegisterReceiptRoutes(app, manager)
	return app, receipts
}

func TestListReceiptsRoute(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		app, _ := setupReceiptRoutes(t)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, PATH_RECEIPTS, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response ReceiptListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Equal(t, 0, response.Total)
		assert.Empty(t, response.Receipts)
	})

	t.Run("pagination", func(t *testing.T) {
		app, receipts := setupReceiptRoutes(t)
		for i := 0; i < 5; i++ {
			require.NoError(t, receipts.Store(context.Background(), testReceipt(fmt.Sprintf("pay_%d", i))))
		}

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, PATH_RECEIPTS+"?offset=2&limit=2", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response ReceiptListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Equal(t, 5, response.Total)
		assert.Equal(t, 2, response.Offset)
		assert.Equal(t, 2, response.Limit)
		require.Len(t, response.Receipts, 2)
		assert.Equal(t, "pay_2", response.Receipts[0].PaymentID)
	})

	t.Run("bad query values fall back to defaults", func(t *testing.T) {
		app, _ := setupReceiptRoutes(t)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, PATH_RECEIPTS+"?offset=abc&limit=-1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response ReceiptListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Equal(t, 0, response.Offset)
		assert.Equal(t, DEFAULT_RECEIPT_LIST_LIMIT, response.Limit)
	})

	t.Run("limit capped", func(t *testing.T) {
		app, _ := setupReceiptRoutes(t)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, PATH_RECEIPTS+"?limit=100000", nil))
		require.NoError(t, err)

		var response ReceiptListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Equal(t, MAX_RECEIPT_LIST_LIMIT, response.Limit)
	})
}

func TestGetReceiptRoute(t *testing.T) {
	t.Run("existing receipt", func(t *testing.T) {
		app, receipts := setupReceiptRoutes(t)
		require.NoError(t, receipts.Store(context.Background(), testReceipt("pay_abc")))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, PATH_RECEIPTS+"/pay_abc", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var receipt PaymentReceipt
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&receipt))
		assert.Equal(t, "pay_abc", receipt.PaymentID)
		assert.Equal(t, TEST_TRANSACTION_HASH, receipt.Transaction)
	})

	t.Run("missing receipt is 404", func(t *testing.T) {
		app, _ := setupReceiptRoutes(t)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, PATH_RECEIPTS+"/pay_missing", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Equal(t, http.StatusNotFound, response.Code)
	})
}

func TestVersionRoute(t *testing.T) {
	app, _ := setupReceiptRoutes(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, PATH_VERSION, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var response VersionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.Equal(t, PACKAGE_NAME, response.Name)
	assert.NotEmpty(t, response.Version)
}
