package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/config"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	customerrepo "github.com/smallbiznis/rechargedesk/internal/customer/repository"
	customerservice "github.com/smallbiznis/rechargedesk/internal/customer/service"
	plandomain "github.com/smallbiznis/rechargedesk/internal/plan/domain"
	planrepo "github.com/smallbiznis/rechargedesk/internal/plan/repository"
	planservice "github.com/smallbiznis/rechargedesk/internal/plan/service"
	"github.com/smallbiznis/rechargedesk/internal/sale/domain"
	"github.com/smallbiznis/rechargedesk/internal/sale/repository"
	"github.com/smallbiznis/rechargedesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      domain.Service
	clock    *clock.FakeClock
	customer customerdomain.Customer
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&customerdomain.Customer{},
		&customerdomain.CustomerNumber{},
		&plandomain.Plan{},
		&domain.Sale{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 8, 20, 14, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	customers := customerservice.New(customerservice.Params{
		DB: conn, Log: log, GenID: node, Clock: clk, Repo: customerrepo.Provide(),
	})
	plans := planservice.New(planservice.Params{
		Log: log, GenID: node, Clock: clk, Repo: planrepo.Provide(conn),
	})

	customer, err := customers.Create(context.Background(), customerdomain.CreateCustomerRequest{
		Name:  "Carlos Diaz",
		Phone: "5550107777",
	})
	require.NoError(t, err)

	svc := New(Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Clock:       clk,
		Billing:     config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
		Repo:        repository.Provide(),
		CustomerSvc: customers,
		PlanSvc:     plans,
	})
	return fixture{svc: svc, clock: clk, customer: customer}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func TestCreateDerivesPaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		paid   *decimal.Decimal
		status domain.PaymentStatus
	}{
		{paid: nil, status: domain.PaymentStatusPaid},
		{paid: decPtr("20"), status: domain.PaymentStatusPartial},
		{paid: decPtr("0"), status: domain.PaymentStatusUnpaid},
	}

	for _, tt := range tests {
		sale, err := f.svc.Create(ctx, domain.CreateRequest{
			CustomerID:    f.customer.ID.String(),
			Amount:        dec("50"),
			AmountPaid:    tt.paid,
			PaymentMethod: "cash",
			BusinessType:  "telecom_phone",
		})
		require.NoError(t, err)
		assert.Equal(t, tt.status, sale.PaymentStatus)
		assert.Equal(t, domain.OrderStatusDelivered, sale.OrderStatus)
		assert.Nil(t, sale.Profit)
	}
}

func TestCreateTravelComputesProfit(t *testing.T) {
	f := newFixture(t)

	sale, err := f.svc.Create(context.Background(), domain.CreateRequest{
		CustomerID:    f.customer.ID.String(),
		PaymentMethod: "card",
		BusinessType:  "travel_international",
		CustomerFare:  decPtr("850.00"),
		OurFare:       decPtr("720.50"),
		Origin:        "JFK",
		Destination:   "SDQ",
	})
	require.NoError(t, err)
	require.NotNil(t, sale.Profit)
	assert.Equal(t, "129.50", sale.Profit.StringFixed(2))
	assert.Equal(t, "850.00", sale.Amount.StringFixed(2))
	assert.Equal(t, domain.PaymentStatusPaid, sale.PaymentStatus)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := f.customer.ID.String()

	_, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: customerID, Amount: dec("-1"), PaymentMethod: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Create(ctx, domain.CreateRequest{CustomerID: customerID, Amount: dec("10"), AmountPaid: decPtr("-1"), PaymentMethod: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidAmountPaid)

	_, err = f.svc.Create(ctx, domain.CreateRequest{CustomerID: customerID, Amount: dec("10"), PaymentMethod: "iou"})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	_, err = f.svc.Create(ctx, domain.CreateRequest{CustomerID: customerID, Amount: dec("10"), PaymentMethod: "cash", BusinessType: "groceries"})
	assert.ErrorIs(t, err, domain.ErrInvalidBusinessType)

	_, err = f.svc.Create(ctx, domain.CreateRequest{CustomerID: customerID, PaymentMethod: "cash", BusinessType: "travel_domestic", CustomerFare: decPtr("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidFare)

	_, err = f.svc.Create(ctx, domain.CreateRequest{CustomerID: "nope", Amount: dec("10"), PaymentMethod: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		CustomerID:    f.customer.ID.String(),
		Amount:        dec("40"),
		AmountPaid:    decPtr("0"),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	sale, err = f.svc.RecordPayment(ctx, sale.ID.String(), dec("15"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPartial, sale.PaymentStatus)

	sale, err = f.svc.RecordPayment(ctx, sale.ID.String(), dec("25"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, sale.PaymentStatus)
	assert.Equal(t, "40.00", sale.AmountPaid.StringFixed(2))

	_, err = f.svc.RecordPayment(ctx, sale.ID.String(), dec("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmountPaid)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		CustomerID:    f.customer.ID.String(),
		Amount:        dec("10"),
		PaymentMethod: "cash",
		OrderStatus:   "processing",
	})
	require.NoError(t, err)

	sale, err = f.svc.UpdateOrderStatus(ctx, sale.ID.String(), "canceled")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCanceled, sale.OrderStatus)

	_, err = f.svc.UpdateOrderStatus(ctx, sale.ID.String(), "lost")
	assert.ErrorIs(t, err, domain.ErrInvalidOrderStatus)
}

func TestRechargeRemindersAndWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	create := func(daysAgo int, businessType string) domain.Sale {
		date := now.AddDate(0, 0, -daysAgo)
		sale, err := f.svc.Create(ctx, domain.CreateRequest{
			CustomerID:    f.customer.ID.String(),
			Amount:        dec("25"),
			PaymentMethod: "cash",
			BusinessType:  businessType,
			Date:          &date,
		})
		require.NoError(t, err)
		return sale
	}

	dueToday := create(30, "telecom_recharge")
	expiredYesterday := create(31, "telecom_recharge")
	create(10, "telecom_recharge")
	create(30, "telecom_phone")

	window, err := f.svc.RechargeWindow(ctx, dueToday.ID.String())
	require.NoError(t, err)
	assert.True(t, window.ExpiryDate.Equal(now))
	assert.True(t, window.IsExpiringSoon)
	assert.False(t, window.HasRecentlyExpired)

	reminders, err := f.svc.RechargeReminders(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	ids := []snowflake.ID{reminders[0].Sale.ID, reminders[1].Sale.ID}
	assert.ElementsMatch(t, []snowflake.ID{dueToday.ID, expiredYesterday.ID}, ids)
	assert.Equal(t, "Carlos Diaz", reminders[0].CustomerName)

	require.NoError(t, f.svc.ClaimReminder(ctx, dueToday.ID.String()))
	assert.ErrorIs(t, f.svc.ClaimReminder(ctx, dueToday.ID.String()), domain.ErrReminderAlreadySent)
	assert.ErrorIs(t, f.svc.ClaimReminder(ctx, "123456789"), domain.ErrNotFound)
	reminders, err = f.svc.RechargeReminders(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, expiredYesterday.ID, reminders[0].Sale.ID)
	assert.True(t, reminders[0].Window.HasRecentlyExpired)

	require.NoError(t, f.svc.ReleaseReminder(ctx, dueToday.ID.String()))
	reminders, err = f.svc.RechargeReminders(ctx)
	require.NoError(t, err)
	assert.Len(t, reminders, 2)
}

func TestRechargeWindowRejectsOtherSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		CustomerID:    f.customer.ID.String(),
		Amount:        dec("300"),
		PaymentMethod: "card",
		BusinessType:  "telecom_phone",
	})
	require.NoError(t, err)

	_, err = f.svc.RechargeWindow(ctx, sale.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotRecharge)
}

func TestListAndBetween(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	for i, bt := range []string{"telecom_recharge", "travel_domestic", "telecom_phone"} {
		date := now.AddDate(0, 0, -i)
		_, err := f.svc.Create(ctx, domain.CreateRequest{
			CustomerID:    f.customer.ID.String(),
			Amount:        dec("10"),
			PaymentMethod: "cash",
			BusinessType:  bt,
			Date:          &date,
		})
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	resp, err := f.svc.List(ctx, domain.ListRequest{BusinessType: "telecom"})
	require.NoError(t, err)
	assert.Len(t, resp.Sales, 2)

	sales, err := f.svc.Between(ctx, now.AddDate(0, 0, -1), now.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	_, err = f.svc.Between(ctx, now, now.AddDate(0, 0, -1), "")
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}
