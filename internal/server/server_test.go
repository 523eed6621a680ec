package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rechargedesk/internal/cache"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/config"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	customerrepo "github.com/smallbiznis/rechargedesk/internal/customer/repository"
	customerservice "github.com/smallbiznis/rechargedesk/internal/customer/service"
	invoicedomain "github.com/smallbiznis/rechargedesk/internal/invoice/domain"
	"github.com/smallbiznis/rechargedesk/internal/invoice/render"
	invoicerepo "github.com/smallbiznis/rechargedesk/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/rechargedesk/internal/invoice/service"
	obsmetrics "github.com/smallbiznis/rechargedesk/internal/observability/metrics"
	plandomain "github.com/smallbiznis/rechargedesk/internal/plan/domain"
	planrepo "github.com/smallbiznis/rechargedesk/internal/plan/repository"
	planservice "github.com/smallbiznis/rechargedesk/internal/plan/service"
	"github.com/smallbiznis/rechargedesk/internal/providers/email"
	"github.com/smallbiznis/rechargedesk/internal/providers/pdf"
	reportingservice "github.com/smallbiznis/rechargedesk/internal/reporting/service"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	salerepo "github.com/smallbiznis/rechargedesk/internal/sale/repository"
	saleservice "github.com/smallbiznis/rechargedesk/internal/sale/service"
	subscriptiondomain "github.com/smallbiznis/rechargedesk/internal/subscription/domain"
	subscriptionrepo "github.com/smallbiznis/rechargedesk/internal/subscription/repository"
	subscriptionservice "github.com/smallbiznis/rechargedesk/internal/subscription/service"
	"github.com/smallbiznis/rechargedesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePDF struct{}

func (fakePDF) GenerateInvoice(context.Context, pdf.InvoiceData) ([]byte, error) {
	return []byte("%PDF-invoice"), nil
}

func (fakePDF) GenerateReport(context.Context, pdf.ReportData) ([]byte, error) {
	return []byte("%PDF-report"), nil
}

type discardEmail struct{ sent int }

func (d *discardEmail) Send(context.Context, email.Message) error { return nil }

func (d *discardEmail) SendTemplate(context.Context, []string, string, map[string]any, ...email.Attachment) error {
	d.sent++
	return nil
}

type testServer struct {
	engine *gin.Engine
	clock  *clock.FakeClock
	email  *discardEmail
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&customerdomain.Customer{},
		&customerdomain.CustomerNumber{},
		&plandomain.Plan{},
		&subscriptiondomain.CustomerPlan{},
		&saledomain.Sale{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	billing := config.NewStaticBillingConfigHolder(config.DefaultBillingConfig())
	cfg := config.Config{
		InvoiceNumberTemplate: "INV-{YYYY}{MM}-{SEQ4}",
		Business:              config.BusinessConfig{Name: "Corner Recharge", CurrencySymbol: "$"},
	}
	mailer := &discardEmail{}

	customers := customerservice.New(customerservice.Params{
		DB: conn, Log: log, GenID: node, Clock: clk, Repo: customerrepo.Provide(),
	})
	plans := planservice.New(planservice.Params{
		Log: log, GenID: node, Clock: clk, Repo: planrepo.Provide(conn),
	})
	subscriptions := subscriptionservice.New(subscriptionservice.Params{
		DB: conn, Log: log, GenID: node, Clock: clk, Billing: billing,
		Repo: subscriptionrepo.Provide(), CustomerSvc: customers, PlanSvc: plans,
	})
	sales := saleservice.New(saleservice.Params{
		DB: conn, Log: log, GenID: node, Clock: clk, Billing: billing,
		Repo: salerepo.Provide(), CustomerSvc: customers, PlanSvc: plans,
	})
	invoices := invoiceservice.New(invoiceservice.Params{
		DB: conn, Log: log, GenID: node, Clock: clk, Config: cfg, Billing: billing,
		Repo: invoicerepo.Provide(), CustomerSvc: customers, SaleSvc: sales,
		Renderer: render.NewRenderer(), PDF: fakePDF{}, Email: mailer,
	})
	reports := reportingservice.New(reportingservice.Params{
		Log: log, Clock: clk, Config: cfg, Cache: cache.NopStore{},
		CustomerSvc: customers, SaleSvc: sales, PDF: fakePDF{},
	})

	httpMetrics, err := obsmetrics.NewHTTPMetrics(prometheus.NewRegistry(), obsmetrics.Config{ServiceName: "test"})
	require.NoError(t, err)

	srv := NewServer(ServerParams{
		Gin:             NewEngine(log, httpMetrics),
		Clock:           clk,
		CustomerSvc:     customers,
		PlanSvc:         plans,
		SubscriptionSvc: subscriptions,
		SaleSvc:         sales,
		InvoiceSvc:      invoices,
		ReportingSvc:    reports,
	})
	return testServer{engine: srv.Engine(), clock: clk, email: mailer}
}

func (ts testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorPayload   `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder, field string) string {
	t.Helper()
	var data map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	value, ok := data[field].(string)
	require.True(t, ok, "field %s missing in %s", field, rec.Body.String())
	return value
}

func (ts testServer) createCustomer(t *testing.T, name, mail string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/customers", map[string]any{
		"name": name, "phone": "5550103333", "email": mail,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return dataField(t, rec, "id")
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rechargedesk_http_requests_total")
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec).Error.Type)
}

func TestCustomerCRUD(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createCustomer(t, "Lucia Perez", "lucia@example.com")

	rec := ts.do(t, http.MethodGet, "/api/customers/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lucia Perez", dataField(t, rec, "name"))

	rec = ts.do(t, http.MethodPatch, "/api/customers/"+id, map[string]any{"name": "Lucia P."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Lucia P.", dataField(t, rec, "name"))

	rec = ts.do(t, http.MethodPost, "/api/customers/"+id+"/numbers", map[string]any{
		"phone": "5550109999", "carrier": "claro", "label": "daughter",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	numberID := dataField(t, rec, "id")

	rec = ts.do(t, http.MethodGet, "/api/customers/"+id+"/numbers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var numbers []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &numbers))
	assert.Len(t, numbers, 1)

	rec = ts.do(t, http.MethodDelete, "/api/customers/"+id+"/numbers/"+numberID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/customers/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/customers/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationErrorsNameTheField(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/customers", map[string]any{"phone": "5550101010"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decode(t, rec).Error
	require.NotNil(t, payload)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, ValidationError{Field: "name", Code: "invalid_name", Message: "invalid value"}, payload.Errors[0])

	rec = ts.do(t, http.MethodGet, "/api/customers/not-a-number", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id", decode(t, rec).Error.Errors[0].Field)

	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	raw := httptest.NewRecorder()
	ts.engine.ServeHTTP(raw, req)
	require.Equal(t, http.StatusBadRequest, raw.Code)
	assert.Equal(t, "invalid_request", decode(t, raw).Error.Errors[0].Code)

	rec = ts.do(t, http.MethodGet, "/api/sales?from=yesterday", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "from", decode(t, rec).Error.Errors[0].Field)
}

func TestPlansAndSubscriptions(t *testing.T) {
	ts := newTestServer(t)
	customerID := ts.createCustomer(t, "Jose Marin", "jose@example.com")

	rec := ts.do(t, http.MethodPost, "/api/plans", map[string]any{
		"name": "Unlimited 30", "price": "45.00", "duration_days": 30, "carrier": "claro",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	planID := dataField(t, rec, "id")

	rec = ts.do(t, http.MethodPost, "/api/plans", map[string]any{"name": "Broken", "price": "10", "duration_days": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "duration_days", decode(t, rec).Error.Errors[0].Field)

	start := ts.clock.Now().AddDate(0, 0, -25)
	rec = ts.do(t, http.MethodPost, "/api/subscriptions", map[string]any{
		"customer_id": customerID, "plan_id": planID, "start_date": start.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	subscriptionID := dataField(t, rec, "id")

	rec = ts.do(t, http.MethodGet, "/api/subscriptions/expiring", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var expiring []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &expiring))
	require.Len(t, expiring, 1)
	assert.Equal(t, "Jose Marin", expiring[0]["customer_name"])

	rec = ts.do(t, http.MethodPost, "/api/subscriptions/"+subscriptionID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/subscriptions/"+subscriptionID+"/activate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/plans/"+planID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decode(t, rec).Data))
}

func TestSalesAndRechargeWindow(t *testing.T) {
	ts := newTestServer(t)
	customerID := ts.createCustomer(t, "Rosa Gil", "rosa@example.com")

	date := ts.clock.Now().AddDate(0, 0, -28)
	rec := ts.do(t, http.MethodPost, "/api/sales", map[string]any{
		"customer_id":    customerID,
		"amount":         "20.00",
		"payment_method": "cash",
		"business_type":  "telecom_recharge",
		"phone_number":   "5550103333",
		"date":           date.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saleID := dataField(t, rec, "id")
	assert.Equal(t, "unpaid", dataField(t, rec, "payment_status"))

	rec = ts.do(t, http.MethodPost, "/api/sales/"+saleID+"/payments", map[string]any{"amount": "20"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "paid", dataField(t, rec, "payment_status"))

	rec = ts.do(t, http.MethodGet, "/api/sales/"+saleID+"/recharge-window", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var window saledomain.Window
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &window))
	assert.True(t, window.IsExpiringSoon)
	assert.True(t, window.ExpiryDate.Equal(date.AddDate(0, 0, 30)))

	rec = ts.do(t, http.MethodGet, "/api/sales?business_type=telecom", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list saledomain.ListResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	assert.Len(t, list.Sales, 1)

	rec = ts.do(t, http.MethodPost, "/api/sales", map[string]any{
		"customer_id": customerID, "amount": "-1", "payment_method": "cash",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount", decode(t, rec).Error.Errors[0].Field)
}

func TestInvoiceLifecycle(t *testing.T) {
	ts := newTestServer(t)
	customerID := ts.createCustomer(t, "Pedro Luna", "pedro@example.com")

	rec := ts.do(t, http.MethodPost, "/api/invoices", map[string]any{
		"customer_id": customerID,
		"items": []map[string]any{
			{"description": "Recharge", "quantity": 2, "unit_price": "10.00"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invoiceID := dataField(t, rec, "id")
	assert.True(t, decimal.RequireFromString("21.80").Equal(decimal.RequireFromString(dataField(t, rec, "total"))))
	assert.Equal(t, "INV-202407-0001", dataField(t, rec, "number"))

	rec = ts.do(t, http.MethodPut, "/api/invoices/"+invoiceID+"/items", map[string]any{
		"items": []map[string]any{{"description": "Recharge", "quantity": 0, "unit_price": "10.00"}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ValidationError{Field: "items[0].quantity", Code: "invalid_quantity", Message: "invalid value"}, decode(t, rec).Error.Errors[0])

	rec = ts.do(t, http.MethodGet, "/api/invoices/"+invoiceID+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "INV-202407-0001.pdf")

	rec = ts.do(t, http.MethodPost, "/api/invoices/"+invoiceID+"/send", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, ts.email.sent)

	rec = ts.do(t, http.MethodPost, "/api/invoices/"+invoiceID+"/status", map[string]any{"status": "paid"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/invoices/"+invoiceID+"/tax", map[string]any{"tax": "1.00"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invoice is already paid", decode(t, rec).Error.Message)

	rec = ts.do(t, http.MethodGet, "/api/invoices?status=paid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list invoicedomain.ListResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	assert.Len(t, list.Invoices, 1)
}

func TestReportsAndDashboard(t *testing.T) {
	ts := newTestServer(t)
	customerID := ts.createCustomer(t, "Elena Ruiz", "elena@example.com")

	rec := ts.do(t, http.MethodPost, "/api/sales", map[string]any{
		"customer_id":    customerID,
		"amount":         "15.00",
		"amount_paid":    "15.00",
		"payment_method": "card",
		"business_type":  "telecom_recharge",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/reports/metrics?start=2024-07-01&end=2024-07-15&business_type=telecom", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var metrics map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &metrics))
	assert.True(t, decimal.NewFromInt(15).Equal(decimal.RequireFromString(metrics["total_revenue"].(string))))

	rec = ts.do(t, http.MethodGet, "/api/reports/metrics?start=2024-07-15&end=2024-07-01", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_date_range", decode(t, rec).Error.Errors[0].Code)

	rec = ts.do(t, http.MethodGet, "/api/reports/metrics?start=1700-01-01&end=2024-07-15", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_date_range", decode(t, rec).Error.Errors[0].Code)

	rec = ts.do(t, http.MethodGet, "/api/reports/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report-2024-06-16-2024-07-15.csv")
	assert.Contains(t, rec.Body.String(), "Elena Ruiz")

	rec = ts.do(t, http.MethodGet, "/api/reports/export?format=doc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "format", decode(t, rec).Error.Errors[0].Field)

	rec = ts.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dashboard struct {
		Today struct {
			OrderCount int `json:"order_count"`
		} `json:"today"`
		ExpiringPlans     []any `json:"expiring_plans"`
		RechargeReminders []any `json:"recharge_reminders"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &dashboard))
	assert.Equal(t, 1, dashboard.Today.OrderCount)
	assert.NotNil(t, dashboard.ExpiringPlans)
	assert.NotNil(t, dashboard.RechargeReminders)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"wrapped not found", errors.Join(errors.New("ctx"), saledomain.ErrNotFound), http.StatusNotFound, "not_found"},
		{"duplicate plan code", plandomain.ErrDuplicateCode, http.StatusConflict, "conflict"},
		{"missing email", invoicedomain.ErrMissingEmail, http.StatusBadRequest, "validation_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, payload.Type)
		})
	}

	_, payload := mapError(invoicedomain.ErrMissingEmail)
	assert.Equal(t, "email", payload.Errors[0].Field)

	kind, code := classifyErrorForLog(customerdomain.ErrInvalidPhone)
	assert.Equal(t, "validation_error", kind)
	assert.Equal(t, "invalid_phone", code)
}
