package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func sale(id, customer int64, date time.Time, bt saledomain.BusinessType, amount string, profit *decimal.Decimal) saledomain.Sale {
	return saledomain.Sale{
		ID:           snowflake.ID(id),
		CustomerID:   snowflake.ID(customer),
		Date:         date,
		BusinessType: bt,
		Amount:       dec(amount),
		Profit:       profit,
	}
}

func fixtureSales() []saledomain.Sale {
	return []saledomain.Sale{
		sale(1, 10, at(2024, 5, 1, 9), saledomain.BusinessTypeTelecomRecharge, "20.00", ptr(dec("2.00"))),
		sale(2, 10, at(2024, 5, 2, 23), saledomain.BusinessTypeTelecomPhone, "100.00", ptr(dec("15.00"))),
		sale(3, 11, at(2024, 5, 3, 12), saledomain.BusinessTypeTravelDomestic, "300.00", ptr(dec("45.00"))),
		sale(4, 12, at(2024, 5, 3, 13), "", "10.00", nil),
		// previous window [Apr 28, May 1)
		sale(5, 10, at(2024, 4, 29, 8), saledomain.BusinessTypeTelecomRecharge, "200.00", nil),
		// outside both windows
		sale(6, 10, at(2024, 5, 4, 0), saledomain.BusinessTypeTelecomRecharge, "999.00", nil),
	}
}

func fixtureCustomers() []customerdomain.Customer {
	return []customerdomain.Customer{
		{ID: 10, Name: "Ana", JoinDate: at(2024, 1, 5, 0)},
		{ID: 11, Name: "Ben", JoinDate: at(2024, 5, 2, 10)},
	}
}

func TestAggregate(t *testing.T) {
	metrics, err := Aggregate(fixtureSales(), fixtureCustomers(), Filter{
		Start: at(2024, 5, 1, 0),
		End:   at(2024, 5, 3, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, metrics.OrderCount)
	assert.True(t, metrics.TotalRevenue.Equal(dec("430.00")), metrics.TotalRevenue.String())
	assert.True(t, metrics.TotalProfit.Equal(dec("62.00")), metrics.TotalProfit.String())
	assert.True(t, metrics.ProfitMargin.Equal(dec("14.42")), metrics.ProfitMargin.String())
	assert.True(t, metrics.PreviousRevenue.Equal(dec("200.00")))
	assert.True(t, metrics.RevenueGrowth.Equal(dec("115")), metrics.RevenueGrowth.String())
	assert.Equal(t, 3, metrics.UniqueCustomers)
	assert.Equal(t, 1, metrics.NewCustomers)
	assert.True(t, metrics.AverageOrderValue.Equal(dec("107.50")))

	require.Len(t, metrics.ServiceDistribution, 4)
	assert.Equal(t, "travel_domestic", metrics.ServiceDistribution[0].BusinessType)
	assert.Equal(t, "other", metrics.ServiceDistribution[3].BusinessType)
	assert.True(t, metrics.ServiceDistribution[0].Share.Equal(dec("69.77")), metrics.ServiceDistribution[0].Share.String())

	require.Len(t, metrics.TopCustomers, 3)
	assert.Equal(t, "Ben", metrics.TopCustomers[0].Name)
	assert.Equal(t, "Ana", metrics.TopCustomers[1].Name)
	assert.Equal(t, customerdomain.UnknownName, metrics.TopCustomers[2].Name)

	require.Len(t, metrics.Daily, 3)
	assert.Equal(t, at(2024, 5, 1, 0), metrics.Daily[0].Date)
	assert.True(t, metrics.Daily[0].Amount.Equal(dec("20.00")))
	assert.True(t, metrics.Daily[1].Amount.Equal(dec("100.00")))
	assert.True(t, metrics.Daily[2].Amount.Equal(dec("310.00")))
	assert.True(t, metrics.Daily[2].Profit.Equal(dec("45.00")))
}

func TestAggregatePrefixFilter(t *testing.T) {
	metrics, err := Aggregate(fixtureSales(), fixtureCustomers(), Filter{
		BusinessTypePrefix: "telecom",
		Start:              at(2024, 5, 1, 0),
		End:                at(2024, 5, 3, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, "telecom_", metrics.Filter.BusinessTypePrefix)
	assert.Equal(t, 2, metrics.OrderCount)
	assert.True(t, metrics.TotalRevenue.Equal(dec("120.00")))
	assert.True(t, metrics.RevenueGrowth.Equal(dec("-40")), metrics.RevenueGrowth.String())
}

func TestAggregateEmptyTravelRangeIsZero(t *testing.T) {
	metrics, err := Aggregate(fixtureSales(), fixtureCustomers(), Filter{
		BusinessTypePrefix: "travel",
		Start:              at(2024, 6, 1, 0),
		End:                at(2024, 6, 30, 0),
	})
	require.NoError(t, err)

	assert.True(t, metrics.TotalRevenue.IsZero())
	assert.True(t, metrics.TotalProfit.IsZero())
	assert.True(t, metrics.ProfitMargin.IsZero())
	assert.True(t, metrics.RevenueGrowth.IsZero())
	assert.True(t, metrics.AverageOrderValue.IsZero())
	assert.Zero(t, metrics.OrderCount)
	assert.Zero(t, metrics.UniqueCustomers)
	assert.Empty(t, metrics.ServiceDistribution)
	assert.Empty(t, metrics.TopCustomers)
	require.Len(t, metrics.Daily, 30)
	for _, point := range metrics.Daily {
		assert.True(t, point.Amount.IsZero())
	}
}

func TestAggregateRejectsInvertedRange(t *testing.T) {
	_, err := Aggregate(nil, nil, Filter{Start: at(2024, 5, 3, 0), End: at(2024, 5, 1, 0)})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	sales := fixtureSales()
	before := sales[0]
	_, err := Aggregate(sales, fixtureCustomers(), Filter{Start: at(2024, 5, 1, 0), End: at(2024, 5, 3, 0)})
	require.NoError(t, err)
	assert.Equal(t, before, sales[0])
}

func TestFilterWindow(t *testing.T) {
	start, end, prev := Filter{Start: at(2024, 5, 1, 15), End: at(2024, 5, 7, 3)}.Window()
	assert.Equal(t, at(2024, 5, 1, 0), start)
	assert.Equal(t, at(2024, 5, 8, 0), end)
	assert.Equal(t, at(2024, 4, 24, 0), prev)
}

func TestAggregateLongestRange(t *testing.T) {
	start := at(2015, 1, 1, 0)
	end := start.AddDate(0, 0, MaxRangeDays-1)
	sales := []saledomain.Sale{
		sale(1, 10, start, saledomain.BusinessTypeTelecomRecharge, "5.00", nil),
		sale(2, 10, at(2024, 5, 1, 9), saledomain.BusinessTypeTelecomRecharge, "20.00", nil),
		sale(3, 10, end.Add(23*time.Hour), saledomain.BusinessTypeTelecomRecharge, "7.00", nil),
	}

	metrics, err := Aggregate(sales, nil, Filter{Start: start, End: end})
	require.NoError(t, err)
	require.Len(t, metrics.Daily, MaxRangeDays)
	assert.True(t, metrics.TotalRevenue.Equal(dec("32.00")))
	assert.True(t, metrics.Daily[0].Amount.Equal(dec("5.00")))
	assert.True(t, metrics.Daily[MaxRangeDays-1].Amount.Equal(dec("7.00")))
	assert.Equal(t, end, metrics.Daily[MaxRangeDays-1].Date)

	_, _, prev := Filter{Start: start, End: end}.Window()
	assert.Equal(t, start.AddDate(0, 0, -MaxRangeDays), prev)
}

func TestAggregateRejectsOverlongRange(t *testing.T) {
	sales := []saledomain.Sale{
		sale(1, 10, at(2024, 5, 1, 9), saledomain.BusinessTypeTelecomRecharge, "20.00", nil),
	}
	for _, filter := range []Filter{
		{Start: at(1700, 1, 1, 0), End: at(2024, 12, 31, 0)},
		{Start: at(2015, 1, 1, 0), End: at(2015, 1, 1, 0).AddDate(0, 0, MaxRangeDays)},
	} {
		assert.NotPanics(t, func() {
			_, err := Aggregate(sales, nil, filter)
			assert.ErrorIs(t, err, ErrInvalidDateRange)
		})
	}
}
