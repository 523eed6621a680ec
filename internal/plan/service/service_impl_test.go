package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/plan/domain"
	"github.com/smallbiznis/rechargedesk/internal/plan/repository"
	"github.com/smallbiznis/rechargedesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Plan{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(conn),
	})
}

func TestCreatePlanDerivesCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, domain.CreateRequest{
		Name:         "Unlimited Talk & Text 30",
		Carrier:      "T-Mobile",
		Price:        decimal.RequireFromString("40"),
		DurationDays: 30,
		Data:         "10GB",
	})
	require.NoError(t, err)
	assert.Equal(t, "unlimited-talk-and-text-30", plan.Code)
	assert.True(t, plan.Active)

	_, err = svc.Create(ctx, domain.CreateRequest{
		Name:         "Unlimited talk and text 30",
		Price:        decimal.RequireFromString("45"),
		DurationDays: 30,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestCreatePlanValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "", DurationDays: 30})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Basic", Price: decimal.NewFromInt(-1), DurationDays: 30})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Basic", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestUpdatePlan(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, domain.CreateRequest{Name: "Basic", Price: decimal.NewFromInt(15), DurationDays: 30})
	require.NoError(t, err)

	price := decimal.RequireFromString("17.50")
	days := 28
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: plan.ID.String(), Price: &price, DurationDays: &days})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, 28, updated.DurationDays)
	assert.Equal(t, "basic", updated.Code)

	zero := 0
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: plan.ID.String(), DurationDays: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestDeletePlanIsSoft(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, domain.CreateRequest{Name: "Basic", Price: decimal.NewFromInt(15), DurationDays: 30})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Premium", Price: decimal.NewFromInt(50), DurationDays: 30})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, plan.ID.String()))

	active, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Premium", active[0].Name)

	all, err := svc.List(ctx, domain.ListRequest{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := svc.Get(ctx, plan.ID.String())
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, svc.Delete(ctx, "42"), domain.ErrNotFound)
}
