package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/rechargedesk/internal/cache"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/config"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/internal/money"
	"github.com/smallbiznis/rechargedesk/internal/providers/pdf"
	"github.com/smallbiznis/rechargedesk/internal/reporting/domain"
	"github.com/smallbiznis/rechargedesk/internal/reporting/export"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	Config      config.Config
	Cache       cache.Store
	CustomerSvc customerdomain.Service
	SaleSvc     saledomain.Service
	PDF         pdf.Provider
}

type Service struct {
	log         *zap.Logger
	clock       clock.Clock
	cfg         config.Config
	cache       cache.Store
	customerSvc customerdomain.Service
	saleSvc     saledomain.Service
	pdf         pdf.Provider
}

func New(p Params) domain.Service {
	store := p.Cache
	if store == nil {
		store = cache.NopStore{}
	}
	return &Service{
		log:         p.Log.Named("reporting.service"),
		clock:       p.Clock,
		cfg:         p.Config,
		cache:       store,
		customerSvc: p.CustomerSvc,
		saleSvc:     p.SaleSvc,
		pdf:         p.PDF,
	}
}

func (s *Service) Metrics(ctx context.Context, req domain.MetricsRequest) (domain.Metrics, error) {
	filter := toFilter(req)
	if err := filter.Validate(); err != nil {
		return domain.Metrics{}, err
	}

	key := metricsKey(filter)
	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}

	metrics, _, _, err := s.aggregate(ctx, filter)
	if err != nil {
		return domain.Metrics{}, err
	}
	s.writeCache(ctx, key, metrics)
	return metrics, nil
}

func (s *Service) Today(ctx context.Context) (domain.Metrics, error) {
	now := s.clock.Now()
	return s.Metrics(ctx, domain.MetricsRequest{Start: now, End: now})
}

func (s *Service) Export(ctx context.Context, req domain.MetricsRequest, format domain.Format) (domain.Document, error) {
	format = domain.Format(strings.ToLower(strings.TrimSpace(string(format))))
	switch format {
	case domain.FormatCSV, domain.FormatXLSX, domain.FormatPDF:
	default:
		return domain.Document{}, domain.ErrInvalidFormat
	}

	filter := toFilter(req)
	if err := filter.Validate(); err != nil {
		return domain.Document{}, err
	}

	metrics, sales, directory, err := s.aggregate(ctx, filter)
	if err != nil {
		return domain.Document{}, err
	}
	start, end, _ := filter.Window()
	sales = within(sales, start, end)

	name := fmt.Sprintf("report-%s-%s", metrics.Filter.Start.Format(dateLayout), metrics.Filter.End.Format(dateLayout))

	var doc domain.Document
	switch format {
	case domain.FormatCSV:
		data, err := export.CSV(metrics, sales, directory)
		if err != nil {
			return domain.Document{}, err
		}
		doc = domain.Document{Filename: name + ".csv", ContentType: "text/csv", Data: data}
	case domain.FormatXLSX:
		data, err := export.XLSX(metrics, sales, directory)
		if err != nil {
			return domain.Document{}, err
		}
		doc = domain.Document{
			Filename:    name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}
	case domain.FormatPDF:
		data, err := s.pdf.GenerateReport(ctx, s.reportData(metrics))
		if err != nil {
			return domain.Document{}, err
		}
		doc = domain.Document{Filename: name + ".pdf", ContentType: "application/pdf", Data: data}
	}

	s.log.Info("report exported",
		zap.String("format", string(format)),
		zap.String("business_type", metrics.Filter.BusinessTypePrefix),
		zap.Int("sales", len(sales)),
	)
	return doc, nil
}

// aggregate loads the current and previous windows in one query and runs the aggregator.
func (s *Service) aggregate(ctx context.Context, filter domain.Filter) (domain.Metrics, []saledomain.Sale, customerdomain.Directory, error) {
	_, end, prevStart := filter.Window()

	sales, err := s.saleSvc.Between(ctx, prevStart, end, filter.BusinessTypePrefix)
	if err != nil {
		return domain.Metrics{}, nil, nil, err
	}
	customers, err := s.customerSvc.All(ctx)
	if err != nil {
		return domain.Metrics{}, nil, nil, err
	}

	metrics, err := domain.Aggregate(sales, customers, filter)
	if err != nil {
		return domain.Metrics{}, nil, nil, err
	}
	return metrics, sales, customerdomain.NewDirectory(customers), nil
}

func (s *Service) readCache(ctx context.Context, key string) (domain.Metrics, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return domain.Metrics{}, false
	}
	if !ok {
		return domain.Metrics{}, false
	}
	var metrics domain.Metrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		s.log.Warn("report cache entry corrupt", zap.String("key", key), zap.Error(err))
		return domain.Metrics{}, false
	}
	return metrics, true
}

func (s *Service) writeCache(ctx context.Context, key string, metrics domain.Metrics) {
	if s.cfg.ReportCacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.ReportCacheTTL); err != nil {
		s.log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) reportData(m domain.Metrics) pdf.ReportData {
	symbol := s.cfg.Business.CurrencySymbol
	summary := []pdf.ReportLine{
		{Label: "Total revenue", Value: money.Format(symbol, m.TotalRevenue)},
		{Label: "Total profit", Value: money.Format(symbol, m.TotalProfit)},
		{Label: "Profit margin", Value: m.ProfitMargin.StringFixed(2) + "%"},
		{Label: "Previous period revenue", Value: money.Format(symbol, m.PreviousRevenue)},
		{Label: "Revenue growth", Value: m.RevenueGrowth.StringFixed(2) + "%"},
		{Label: "Orders", Value: fmt.Sprint(m.OrderCount)},
		{Label: "Unique customers", Value: fmt.Sprint(m.UniqueCustomers)},
		{Label: "New customers", Value: fmt.Sprint(m.NewCustomers)},
		{Label: "Average order value", Value: money.Format(symbol, m.AverageOrderValue)},
	}

	services := make([]pdf.ReportLine, 0, len(m.ServiceDistribution))
	for _, share := range m.ServiceDistribution {
		services = append(services, pdf.ReportLine{
			Label: share.BusinessType,
			Value: fmt.Sprintf("%s (%s%%)", money.Format(symbol, share.Amount), share.Share.StringFixed(2)),
		})
	}

	top := make([]pdf.ReportLine, 0, len(m.TopCustomers))
	for _, customer := range m.TopCustomers {
		top = append(top, pdf.ReportLine{Label: customer.Name, Value: money.Format(symbol, customer.Revenue)})
	}

	daily := make([]pdf.ReportDay, 0, len(m.Daily))
	for _, point := range m.Daily {
		daily = append(daily, pdf.ReportDay{
			Date:    point.Date.Format(dateLayout),
			Revenue: money.Format(symbol, point.Amount),
			Profit:  money.Format(symbol, point.Profit),
		})
	}

	title := "Sales report"
	if m.Filter.BusinessTypePrefix != "" {
		title = fmt.Sprintf("Sales report (%s)", strings.TrimSuffix(m.Filter.BusinessTypePrefix, "_"))
	}

	return pdf.ReportData{
		BusinessName: s.cfg.Business.Name,
		Title:        title,
		Period:       m.Filter.Start.Format(dateLayout) + " to " + m.Filter.End.Format(dateLayout),
		GeneratedAt:  s.clock.Now().UTC().Format("2006-01-02 15:04 MST"),
		Summary:      summary,
		Services:     services,
		Top:          top,
		Daily:        daily,
	}
}

func toFilter(req domain.MetricsRequest) domain.Filter {
	return domain.Filter{
		BusinessTypePrefix: saledomain.NormalizePrefix(req.BusinessType),
		Start:              req.Start,
		End:                req.End,
	}
}

func metricsKey(filter domain.Filter) string {
	start, end, _ := filter.Window()
	return cache.Key("report", "metrics", filter.BusinessTypePrefix, start.Format(dateLayout), end.Format(dateLayout))
}

func within(sales []saledomain.Sale, start, end time.Time) []saledomain.Sale {
	out := make([]saledomain.Sale, 0, len(sales))
	for _, sale := range sales {
		if !sale.Date.Before(start) && sale.Date.Before(end) {
			out = append(out, sale)
		}
	}
	return out
}
