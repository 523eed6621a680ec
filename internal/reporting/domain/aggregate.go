package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/internal/money"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
)

const secondsPerDay = 24 * 60 * 60

// MaxRangeDays bounds a report window; the daily series holds one point per day.
const MaxRangeDays = 3660

// Window returns the half-open ranges covered by the filter and by the
// same-length period immediately before it. Days are taken in UTC.
func (f Filter) Window() (start, end, prevStart time.Time) {
	start = truncateDay(f.Start)
	end = truncateDay(f.End).AddDate(0, 0, 1)
	prevStart = start.AddDate(0, 0, -daysBetween(start, end))
	return start, end, prevStart
}

func (f Filter) Validate() error {
	if f.Start.IsZero() || f.End.IsZero() {
		return ErrInvalidDateRange
	}
	days := daysBetween(truncateDay(f.Start), truncateDay(f.End)) + 1
	if days < 1 || days > MaxRangeDays {
		return ErrInvalidDateRange
	}
	return nil
}

// Aggregate computes metrics over sales dated within the filter. Inputs are not modified.
func Aggregate(sales []saledomain.Sale, customers []customerdomain.Customer, filter Filter) (Metrics, error) {
	if err := filter.Validate(); err != nil {
		return Metrics{}, err
	}

	prefix := saledomain.NormalizePrefix(filter.BusinessTypePrefix)
	filter.BusinessTypePrefix = prefix
	start, end, prevStart := filter.Window()
	filter.Start = start
	filter.End = end.AddDate(0, 0, -1)

	metrics := Metrics{
		Filter:              filter,
		ServiceDistribution: []ServiceShare{},
		TopCustomers:        []CustomerRevenue{},
	}

	current := make([]saledomain.Sale, 0, len(sales))
	previousRevenue := decimal.Zero
	for _, sale := range sales {
		if !matchesPrefix(sale, prefix) {
			continue
		}
		switch {
		case inRange(sale.Date, start, end):
			current = append(current, sale)
		case inRange(sale.Date, prevStart, start):
			previousRevenue = previousRevenue.Add(sale.Amount)
		}
	}

	revenue, profit := decimal.Zero, decimal.Zero
	buckets := map[string]*ServiceShare{}
	byCustomer := map[snowflake.ID]*CustomerRevenue{}
	daily := newDailySeries(start, end)
	for _, sale := range current {
		saleProfit := money.OrZero(sale.Profit)
		revenue = revenue.Add(sale.Amount)
		profit = profit.Add(saleProfit)

		key := sale.BusinessType.Bucket()
		bucket, ok := buckets[key]
		if !ok {
			bucket = &ServiceShare{BusinessType: key}
			buckets[key] = bucket
		}
		bucket.Amount = bucket.Amount.Add(sale.Amount)
		bucket.Orders++

		entry, ok := byCustomer[sale.CustomerID]
		if !ok {
			entry = &CustomerRevenue{CustomerID: sale.CustomerID}
			byCustomer[sale.CustomerID] = entry
		}
		entry.Revenue = entry.Revenue.Add(sale.Amount)
		entry.Orders++

		if idx := daysBetween(start, truncateDay(sale.Date)); idx >= 0 && idx < len(daily) {
			daily[idx].Amount = daily[idx].Amount.Add(sale.Amount)
			daily[idx].Profit = daily[idx].Profit.Add(saleProfit)
		}
	}

	metrics.TotalRevenue = money.Round2(revenue)
	metrics.TotalProfit = money.Round2(profit)
	metrics.ProfitMargin = money.Percent(profit, revenue)
	metrics.PreviousRevenue = money.Round2(previousRevenue)
	metrics.RevenueGrowth = money.Percent(revenue.Sub(previousRevenue), previousRevenue)
	metrics.OrderCount = len(current)
	metrics.UniqueCustomers = len(byCustomer)
	metrics.AverageOrderValue = money.Ratio(revenue, decimal.NewFromInt(int64(len(current))))
	metrics.NewCustomers = countJoined(customers, start, end)

	for _, bucket := range buckets {
		bucket.Share = money.Percent(bucket.Amount, revenue)
		bucket.Amount = money.Round2(bucket.Amount)
		metrics.ServiceDistribution = append(metrics.ServiceDistribution, *bucket)
	}
	sort.Slice(metrics.ServiceDistribution, func(i, j int) bool {
		a, b := metrics.ServiceDistribution[i], metrics.ServiceDistribution[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.BusinessType < b.BusinessType
	})

	metrics.TopCustomers = topCustomers(byCustomer, customerdomain.NewDirectory(customers))

	for i := range daily {
		daily[i].Amount = money.Round2(daily[i].Amount)
		daily[i].Profit = money.Round2(daily[i].Profit)
	}
	metrics.Daily = daily

	return metrics, nil
}

func topCustomers(byCustomer map[snowflake.ID]*CustomerRevenue, directory customerdomain.Directory) []CustomerRevenue {
	out := make([]CustomerRevenue, 0, len(byCustomer))
	for _, entry := range byCustomer {
		entry.Name = directory.NameOf(entry.CustomerID)
		entry.Revenue = money.Round2(entry.Revenue)
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	if len(out) > TopCustomerLimit {
		out = out[:TopCustomerLimit]
	}
	return out
}

func countJoined(customers []customerdomain.Customer, start, end time.Time) int {
	count := 0
	for _, customer := range customers {
		if inRange(customer.JoinDate, start, end) {
			count++
		}
	}
	return count
}

func newDailySeries(start, end time.Time) []DailyPoint {
	series := make([]DailyPoint, daysBetween(start, end))
	for i := range series {
		series[i] = DailyPoint{Date: start.AddDate(0, 0, i)}
	}
	return series
}

// daysBetween counts whole days from a to b, both midnight UTC. Unix seconds
// keep it exact for spans a time.Duration cannot hold.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

func matchesPrefix(sale saledomain.Sale, prefix string) bool {
	return prefix == "" || strings.HasPrefix(string(sale.BusinessType), prefix)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
