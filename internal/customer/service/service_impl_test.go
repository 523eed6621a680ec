package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/internal/customer/repository"
	"github.com/smallbiznis/rechargedesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Customer{}, &domain.CustomerNumber{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, clk
}

func TestCreateCustomer(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "  Maria Lopez ",
		Phone: "+1 (555) 010-2000",
		Email: "Maria@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez", customer.Name)
	assert.Equal(t, "maria@example.com", customer.Email)
	assert.True(t, customer.JoinDate.Equal(clk.Now()))

	got, err := svc.GetByID(ctx, customer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, customer.Name, got.Name)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: " ", Phone: "5550102000"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ana", Phone: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ana", Phone: "5550102000", Email: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestUpdateCustomer(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ana", Phone: "5550102000"})
	require.NoError(t, err)

	clk.Advance(time.Hour)
	name := "Ana Ruiz"
	carrier := "Verizon"
	updated, err := svc.Update(ctx, domain.UpdateCustomerRequest{
		ID:      customer.ID.String(),
		Name:    &name,
		Carrier: &carrier,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", updated.Name)
	assert.Equal(t, "Verizon", updated.Carrier)
	assert.Equal(t, "5550102000", updated.Phone)
	assert.True(t, updated.UpdatedAt.After(customer.UpdatedAt))

	empty := ""
	_, err = svc.Update(ctx, domain.UpdateCustomerRequest{ID: customer.ID.String(), Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestGetByIDErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(ctx, "1234567890")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCustomersFiltersByName(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Maria Lopez", "Mario Rossi", "John Doe"} {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: name, Phone: "5550102000"})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}

	resp, err := svc.List(ctx, domain.ListCustomerRequest{Name: "mari"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 2)
	assert.Equal(t, "Mario Rossi", resp.Customers[0].Name)
	assert.False(t, resp.HasMore)
}

func TestListCustomersPaginates(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: name, Phone: "5550102000"})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}

	first, err := svc.List(ctx, domain.ListCustomerRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Customers, 2)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.NextPageToken)
	assert.Equal(t, "C", first.Customers[0].Name)
}

func TestCustomerNumbers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ana", Phone: "5550102000"})
	require.NoError(t, err)

	number, err := svc.AddNumber(ctx, domain.AddNumberRequest{
		CustomerID: customer.ID.String(),
		Phone:      "5550103000",
		Label:      "daughter",
	})
	require.NoError(t, err)

	numbers, err := svc.ListNumbers(ctx, customer.ID.String())
	require.NoError(t, err)
	require.Len(t, numbers, 1)
	assert.Equal(t, "daughter", numbers[0].Label)

	require.NoError(t, svc.RemoveNumber(ctx, customer.ID.String(), number.ID.String()))
	assert.ErrorIs(t, svc.RemoveNumber(ctx, customer.ID.String(), number.ID.String()), domain.ErrNotFound)
}

func TestDeleteCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ana", Phone: "5550102000"})
	require.NoError(t, err)
	_, err = svc.AddNumber(ctx, domain.AddNumberRequest{CustomerID: customer.ID.String(), Phone: "5550103000"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, customer.ID.String()))

	_, err = svc.GetByID(ctx, customer.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, customer.ID.String()), domain.ErrNotFound)
}
