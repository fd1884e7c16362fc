package order

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"affiliate-addon/pkg/errutil"
	"affiliate-addon/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const attributedNotification = `{
	"tenantId": "t1",
	"user": "commerce-webhook",
	"payload": {
		"id": "ord-100",
		"orderNumber": 1042,
		"orderPaidDate": "2024-03-01T10:00:00Z",
		"totalAfterTip": 42.50,
		"paymentStatus": "Paid",
		"createdAt": "2024-03-01T09:59:00Z",
		"customerId": "c1",
		"customer": {"firstName": "Jane", "lastName": "Doe"},
		"appData": {"affiliate-marketing": {"affiliateId": "AFF1"}}
	}
}`

func decodeEnvelope(t *testing.T, raw string) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	return env
}

func requireCode(t *testing.T, err error, code errutil.CoreStatus) {
	t.Helper()
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, code, be.Code)
}

func TestIngestValidation(t *testing.T) {
	db := testutil.NewTestDB(t, &AffiliateOrder{})
	svc := NewService(ServiceParams{DB: db})

	_, err := svc.Ingest(context.Background(), Envelope{})
	requireCode(t, err, errutil.StatusValidationFailed)

	_, err = svc.Ingest(context.Background(), Envelope{TenantID: "t1"})
	requireCode(t, err, errutil.StatusValidationFailed)

	_, err = svc.Ingest(context.Background(), Envelope{TenantID: "t1", Payload: &Payload{ID: "ord-1"}})
	requireCode(t, err, errutil.StatusValidationFailed)
}

func TestIngestDiscardsUnattributedOrders(t *testing.T) {
	db := testutil.NewTestDB(t, &AffiliateOrder{})
	svc := NewService(ServiceParams{DB: db})

	stored, err := svc.Ingest(context.Background(), Envelope{
		TenantID: "t1",
		Payload:  &Payload{ID: "ord-1", CustomerID: "c1"},
	})
	require.NoError(t, err)
	require.False(t, stored)

	var count int64
	require.NoError(t, db.Model(&AffiliateOrder{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestIngestStoresAttributedOrder(t *testing.T) {
	db := testutil.NewTestDB(t, &AffiliateOrder{})
	svc := NewService(ServiceParams{DB: db})

	stored, err := svc.Ingest(context.Background(), decodeEnvelope(t, attributedNotification))
	require.NoError(t, err)
	require.True(t, stored)

	var record AffiliateOrder
	require.NoError(t, db.Where("tenant_id = ? AND order_id = ?", "t1", "ord-100").First(&record).Error)
	require.Equal(t, "AFF1", record.AffiliateID)
	require.Equal(t, "c1", record.CustomerID)
	require.Equal(t, "Jane Doe", record.CustomerName)
	require.Equal(t, "1042", record.OrderNumber)
	require.Equal(t, "Paid", record.Status)
	require.Equal(t, "commerce-webhook", record.ProcessedBy)
	require.True(t, record.Amount.Equal(decimal.RequireFromString("42.50")),
		"amount drifted: %s", record.Amount)
}

func TestIngestCustomerNameTrimmed(t *testing.T) {
	db := testutil.NewTestDB(t, &AffiliateOrder{})
	svc := NewService(ServiceParams{DB: db})

	env := decodeEnvelope(t, attributedNotification)
	env.Payload.Customer = Customer{FirstName: "Jane"}

	_, err := svc.Ingest(context.Background(), env)
	require.NoError(t, err)

	var record AffiliateOrder
	require.NoError(t, db.First(&record).Error)
	require.Equal(t, "Jane", record.CustomerName)
}

func TestIngestRedeliveryOverwrites(t *testing.T) {
	db := testutil.NewTestDB(t, &AffiliateOrder{})
	svc := NewService(ServiceParams{DB: db})

	_, err := svc.Ingest(context.Background(), decodeEnvelope(t, attributedNotification))
	require.NoError(t, err)

	env := decodeEnvelope(t, attributedNotification)
	env.Payload.TotalAfterTip = decimal.RequireFromString("50.00")

	stored, err := svc.Ingest(context.Background(), env)
	require.NoError(t, err)
	require.True(t, stored)

	var count int64
	require.NoError(t, db.Model(&AffiliateOrder{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var record AffiliateOrder
	require.NoError(t, db.First(&record).Error)
	require.True(t, record.Amount.Equal(decimal.RequireFromString("50.00")))
}

func TestListValidation(t *testing.T) {
	db := testutil.NewTestDB(t, &AffiliateOrder{})
	svc := NewService(ServiceParams{DB: db})

	_, err := svc.List(context.Background(), ListRequest{TenantID: "t1"})
	requireCode(t, err, errutil.StatusValidationFailed)

	_, err = svc.List(context.Background(), ListRequest{AffiliateID: "AFF1"})
	requireCode(t, err, errutil.StatusValidationFailed)
}

func TestListByAffiliate(t *testing.T) {
	db := testutil.NewTestDB(t, &AffiliateOrder{})
	svc := NewService(ServiceParams{DB: db})

	_, err := svc.Ingest(context.Background(), decodeEnvelope(t, attributedNotification))
	require.NoError(t, err)

	other := decodeEnvelope(t, attributedNotification)
	other.Payload.ID = "ord-101"
	other.Payload.AppData = map[string]AppEntry{appDataKey: {AffiliateID: "AFF2"}}
	_, err = svc.Ingest(context.Background(), other)
	require.NoError(t, err)

	records, err := svc.List(context.Background(), ListRequest{TenantID: "t1", AffiliateID: "AFF1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "ord-100", records[0].OrderID)
}
