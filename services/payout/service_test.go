package payout

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"affiliate-addon/pkg/errutil"
	"affiliate-addon/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(ServiceParams{DB: testutil.NewTestDB(t, &Payout{}), Node: node})
}

func requireCode(t *testing.T, err error, code errutil.CoreStatus) {
	t.Helper()
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, code, be.Code)
}

func TestRequestValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, RequestPayout{AffiliateID: "AFF1"})
	requireCode(t, err, errutil.StatusValidationFailed)

	_, err = svc.Request(ctx, RequestPayout{TenantID: "t1"})
	requireCode(t, err, errutil.StatusValidationFailed)

	_, err = svc.Request(ctx, RequestPayout{TenantID: "t1", AffiliateID: "AFF1"})
	requireCode(t, err, errutil.StatusValidationFailed)

	_, err = svc.Request(ctx, RequestPayout{
		TenantID:    "t1",
		AffiliateID: "AFF1",
		Amount:      decimal.RequireFromString("-5"),
	})
	requireCode(t, err, errutil.StatusValidationFailed)
}

func TestRequestRecordsPending(t *testing.T) {
	svc := newTestService(t)

	record, err := svc.Request(context.Background(), RequestPayout{
		TenantID:        "t1",
		AffiliateID:     "AFF1",
		Amount:          decimal.RequireFromString("12.34"),
		StripeAccountID: "acct_123",
	})
	require.NoError(t, err)
	require.NotZero(t, record.PayoutID)
	require.Equal(t, StatusPending, record.Status)
	require.True(t, record.Amount.Equal(decimal.RequireFromString("12.34")))
}

func TestList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, ListRequest{})
	requireCode(t, err, errutil.StatusValidationFailed)

	_, err = svc.Request(ctx, RequestPayout{TenantID: "t1", AffiliateID: "AFF1", Amount: decimal.RequireFromString("10")})
	require.NoError(t, err)
	_, err = svc.Request(ctx, RequestPayout{TenantID: "t1", AffiliateID: "AFF2", Amount: decimal.RequireFromString("20")})
	require.NoError(t, err)

	all, err := svc.List(ctx, ListRequest{TenantID: "t1"})
	require.NoError(t, err)
	require.Len(t, all, 2)

	one, err := svc.List(ctx, ListRequest{TenantID: "t1", AffiliateID: "AFF2"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Equal(t, "AFF2", one[0].AffiliateID)
}
