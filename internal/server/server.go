package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/config"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/rechargedesk/internal/invoice/domain"
	obslogger "github.com/smallbiznis/rechargedesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rechargedesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rechargedesk/internal/observability/tracing"
	plandomain "github.com/smallbiznis/rechargedesk/internal/plan/domain"
	reportingdomain "github.com/smallbiznis/rechargedesk/internal/reporting/domain"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	subscriptiondomain "github.com/smallbiznis/rechargedesk/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log, classifyErrorForLog))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if httpMetrics != nil {
		r.GET("/metrics", gin.WrapH(httpMetrics.Handler()))
	}

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	clock           clock.Clock
	customerSvc     customerdomain.Service
	planSvc         plandomain.Service
	subscriptionSvc subscriptiondomain.Service
	saleSvc         saledomain.Service
	invoiceSvc      invoicedomain.Service
	reportingSvc    reportingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Clock           clock.Clock
	CustomerSvc     customerdomain.Service
	PlanSvc         plandomain.Service
	SubscriptionSvc subscriptiondomain.Service
	SaleSvc         saledomain.Service
	InvoiceSvc      invoicedomain.Service
	ReportingSvc    reportingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		clock:           p.Clock,
		customerSvc:     p.CustomerSvc,
		planSvc:         p.PlanSvc,
		subscriptionSvc: p.SubscriptionSvc,
		saleSvc:         p.SaleSvc,
		invoiceSvc:      p.InvoiceSvc,
		reportingSvc:    p.ReportingSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)
	api.GET("/customers/:id/numbers", s.ListCustomerNumbers)
	api.POST("/customers/:id/numbers", s.AddCustomerNumber)
	api.DELETE("/customers/:id/numbers/:number_id", s.RemoveCustomerNumber)

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)
	api.POST("/plans", s.CreatePlan)
	api.GET("/plans/:id", s.GetPlanByID)
	api.PATCH("/plans/:id", s.UpdatePlan)
	api.DELETE("/plans/:id", s.DeletePlan)

	// -------- Subscriptions --------
	api.GET("/subscriptions", s.ListSubscriptions)
	api.POST("/subscriptions", s.CreateSubscription)
	api.GET("/subscriptions/expiring", s.ListExpiringSubscriptions)
	api.GET("/subscriptions/:id", s.GetSubscriptionByID)
	api.POST("/subscriptions/:id/activate", s.ActivateSubscription)
	api.POST("/subscriptions/:id/cancel", s.CancelSubscription)

	// -------- Sales --------
	api.GET("/sales", s.ListSales)
	api.POST("/sales", s.CreateSale)
	api.GET("/sales/recharge-reminders", s.ListRechargeReminders)
	api.GET("/sales/:id", s.GetSaleByID)
	api.DELETE("/sales/:id", s.DeleteSale)
	api.POST("/sales/:id/payments", s.RecordSalePayment)
	api.POST("/sales/:id/order-status", s.UpdateSaleOrderStatus)
	api.GET("/sales/:id/recharge-window", s.GetRechargeWindow)
	api.POST("/sales/:id/invoice", s.CreateInvoiceFromSale)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.PUT("/invoices/:id/items", s.UpdateInvoiceItems)
	api.PATCH("/invoices/:id/dates", s.UpdateInvoiceDates)
	api.POST("/invoices/:id/status", s.SetInvoiceStatus)
	api.POST("/invoices/:id/tax", s.OverrideInvoiceTax)
	api.GET("/invoices/:id/pdf", s.RenderInvoicePDF)
	api.POST("/invoices/:id/send", s.SendInvoice)

	// -------- Reports --------
	api.GET("/reports/metrics", s.GetReportMetrics)
	api.GET("/reports/export", s.ExportReport)

	api.GET("/dashboard", s.GetDashboard)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}

// attachment writes a rendered file as a download.
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
