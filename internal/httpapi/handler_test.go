package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"affiliate-addon/pkg/config"
	"affiliate-addon/pkg/health"
	"affiliate-addon/services/affiliate"
	"affiliate-addon/services/commission"
	"affiliate-addon/services/order"
	"affiliate-addon/services/payout"
	"affiliate-addon/services/settings"
	"affiliate-addon/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
	gin.SetMode(gin.TestMode)
}

type fakeUpstream struct {
	err error
}

func (f *fakeUpstream) PutCustomerAffiliateData(context.Context, string, string, string, string) error {
	return f.err
}

func (f *fakeUpstream) PutProductCommission(context.Context, string, string, string, string) error {
	return f.err
}

func newTestEngine(t *testing.T) (*gin.Engine, *fakeUpstream) {
	t.Helper()

	db := testutil.NewTestDB(t,
		&affiliate.Affiliate{},
		&order.AffiliateOrder{},
		&commission.Program{},
		&settings.TenantSettings{},
		&payout.Payout{},
	)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	up := &fakeUpstream{}
	h := NewHandler(HandlerParams{
		Affiliates:  affiliate.NewService(affiliate.ServiceParams{DB: db, Sync: up}),
		Orders:      order.NewService(order.ServiceParams{DB: db}),
		Commissions: commission.NewService(commission.ServiceParams{DB: db, Sync: up}),
		Settings:    settings.NewService(settings.ServiceParams{DB: db}),
		Payouts:     payout.NewService(payout.ServiceParams{DB: db, Node: node}),
		Health:      health.ProvideHealth(health.HealthParams{DB: db}),
	})

	return NewEngine(&config.Config{}, h), up
}

func do(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAffiliateRegistrationFlow(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/v1/affiliates",
		`{"tenantId":"t1","customerId":"c1","name":"Jane Doe"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode(t, w)
	affiliateID, _ := created["affiliateId"].(string)
	require.True(t, strings.HasPrefix(affiliateID, "AFF"))
	require.Len(t, affiliateID, 13)
	require.Equal(t, "Active", created["status"])

	// same customer again is the idempotent read path
	w = do(t, r, http.MethodPost, "/v1/affiliates",
		`{"tenantId":"t1","customerId":"c1","name":"Jane Doe"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, affiliateID, decode(t, w)["affiliateId"])

	// an attributed order lands in the tenant's order list
	w = do(t, r, http.MethodPost, "/v1/webhooks/orders", `{
		"tenantId": "t1",
		"user": "webhook",
		"payload": {
			"id": "ord-1",
			"customerId": "c9",
			"totalAfterTip": 42.50,
			"paymentStatus": "Paid",
			"appData": {"affiliate-marketing": {"affiliateId": "`+affiliateID+`"}}
		}
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Order processed", decode(t, w)["message"])

	w = do(t, r, http.MethodGet, "/v1/orders?tenantId=t1&affiliateId="+affiliateID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var orders []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Equal(t, "ord-1", orders[0]["orderId"])
	require.Equal(t, "42.5", orders[0]["amount"])
}

func TestWebhookWithoutAttributionIsAcknowledged(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/v1/webhooks/orders", `{
		"tenantId": "t1",
		"payload": {"id": "ord-1", "customerId": "c1", "totalAfterTip": 10}
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Order processed", decode(t, w)["message"])

	// nothing should be listed for any affiliate
	w = do(t, r, http.MethodGet, "/v1/orders?tenantId=t1&affiliateId=AFF0000000000", "")
	require.Equal(t, http.StatusOK, w.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Empty(t, orders)
}

func TestCreateAffiliateBadRequest(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/v1/affiliates", `{"tenantId":"t1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decode(t, w), "error")

	w = do(t, r, http.MethodPost, "/v1/affiliates", `{invalid`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAffiliateUpstreamFailure(t *testing.T) {
	r, up := newTestEngine(t)
	up.err = context.DeadlineExceeded

	w := do(t, r, http.MethodPost, "/v1/affiliates",
		`{"tenantId":"t1","customerId":"c1","name":"Jane Doe"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// the forward write was rolled back
	up.err = nil
	w = do(t, r, http.MethodGet, "/v1/affiliates?tenantId=t1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Empty(t, records)
}

func TestAffiliateStatusAndDelete(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/v1/affiliates",
		`{"tenantId":"t1","customerId":"c1","name":"Jane Doe"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	affiliateID := decode(t, w)["affiliateId"].(string)

	w = do(t, r, http.MethodPut, "/v1/affiliates/"+affiliateID+"/status",
		`{"tenantId":"t1","status":"Inactive"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Affiliate status updated to Inactive", decode(t, w)["message"])

	w = do(t, r, http.MethodPut, "/v1/affiliates/AFFDOESNOTEX/status",
		`{"tenantId":"t1","status":"Active"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, "/v1/affiliates/"+affiliateID+"?tenantId=t1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Affiliate marked as Deleted", decode(t, w)["message"])
}

func TestTrackingLink(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/v1/affiliates",
		`{"tenantId":"t1","customerId":"c1","name":"Jane Doe"}`)
	affiliateID := decode(t, w)["affiliateId"].(string)

	// no base URL configured yet
	w = do(t, r, http.MethodPost, "/v1/affiliates/"+affiliateID+"/link?tenantId=t1", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/v1/settings/base-url",
		`{"tenantId":"t1","baseUrl":"https://shop.example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/v1/affiliates/"+affiliateID+"/link?tenantId=t1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "https://shop.example.com?ref="+affiliateID, decode(t, w)["trackingLink"])
}

func TestCommissionProgramEndpoints(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(t, r, http.MethodGet, "/v1/commission-program?tenantId=t1", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/v1/commission-program",
		`{"tenantId":"t1","commissionType":"default","defaultRate":0.15}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Commission program saved successfully!", decode(t, w)["message"])

	w = do(t, r, http.MethodPost, "/v1/commission-program",
		`{"tenantId":"t1","commissionType":"default","defaultRate":0.15}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "No changes detected in commission program.", decode(t, w)["message"])

	w = do(t, r, http.MethodGet, "/v1/commission-program?tenantId=t1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "0.15", decode(t, w)["defaultRate"])

	w = do(t, r, http.MethodPut, "/v1/products/p1/commission",
		`{"tenantId":"t1","productId":"p1","commissionType":"per_product","commissionValue":0.25}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Commission settings updated successfully!", decode(t, w)["message"])
}

func TestSetBaseURLResponses(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/v1/settings/base-url",
		`{"tenantId":"t1","baseUrl":"https://a.example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Base URL set for t1", decode(t, w)["message"])

	w = do(t, r, http.MethodPost, "/v1/settings/base-url",
		`{"tenantId":"t1","baseUrl":"https://b.example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Base URL updated for t1", decode(t, w)["message"])

	w = do(t, r, http.MethodPost, "/v1/settings/base-url",
		`{"tenantId":"t1","baseUrl":"https://b.example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Base URL for t1 is already up to date.", decode(t, w)["message"])
}

func TestPayoutEndpoints(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/v1/payouts",
		`{"tenantId":"t1","affiliateId":"AFF1","amount":12.34}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Payout recorded", decode(t, w)["message"])

	w = do(t, r, http.MethodGet, "/v1/payouts?tenantId=t1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/affiliates", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(t, r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", decode(t, w)["status"])

	w = do(t, r, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", decode(t, w)["status"])
}
