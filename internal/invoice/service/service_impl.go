package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/config"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/internal/invoice/domain"
	invoiceformat "github.com/smallbiznis/rechargedesk/internal/invoice/format"
	"github.com/smallbiznis/rechargedesk/internal/invoice/render"
	"github.com/smallbiznis/rechargedesk/internal/providers/email"
	"github.com/smallbiznis/rechargedesk/internal/providers/pdf"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	"github.com/smallbiznis/rechargedesk/pkg/db"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxNumberAttempts = 3

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Config      config.Config
	Billing     *config.BillingConfigHolder
	Repo        domain.Repository
	CustomerSvc customerdomain.Service
	SaleSvc     saledomain.Service
	Renderer    render.Renderer
	PDF         pdf.Provider
	Email       email.Provider
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.Config
	billing     *config.BillingConfigHolder
	repo        domain.Repository
	customerSvc customerdomain.Service
	saleSvc     saledomain.Service
	renderer    render.Renderer
	pdf         pdf.Provider
	email       email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Config,
		billing:     p.Billing,
		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
		saleSvc:     p.SaleSvc,
		renderer:    p.Renderer,
		pdf:         p.PDF,
		email:       p.Email,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Response, error) {
	customer, err := s.customerSvc.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customerdomain.ErrInvalidID) {
			return domain.Response{}, domain.ErrInvalidCustomer
		}
		return domain.Response{}, err
	}

	var saleID *snowflake.ID
	if strings.TrimSpace(req.SaleID) != "" {
		sale, err := s.saleSvc.Get(ctx, req.SaleID)
		if err != nil {
			if errors.Is(err, saledomain.ErrInvalidID) {
				return domain.Response{}, domain.ErrInvalidSale
			}
			return domain.Response{}, err
		}
		if sale.CustomerID != customer.ID {
			return domain.Response{}, domain.ErrInvalidSale
		}
		saleID = &sale.ID
	}

	now := s.clock.Now()
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.UTC()
	}
	dueDate := date.AddDate(0, 0, s.billing.Get().InvoiceDueDays)
	if req.DueDate != nil && !req.DueDate.IsZero() {
		dueDate = req.DueDate.UTC()
	}

	invoice, err := domain.Build(customer.ID, date, dueDate, toItems(req.Items), s.billing.Get().TaxRateDecimal())
	if err != nil {
		return domain.Response{}, err
	}
	invoice.SaleID = saleID
	invoice.Notes = strings.TrimSpace(req.Notes)

	if err := s.insert(ctx, &invoice, now); err != nil {
		return domain.Response{}, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
		zap.String("customer_id", customer.ID.String()),
		zap.String("total", invoice.Total.StringFixed(2)),
	)
	return s.toResponse(invoice, customer.Name, now), nil
}

// insert assigns an id and the next invoice number. Concurrent writers can race on
// the number, so a unique violation is retried with a fresh sequence.
func (s *Service) insert(ctx context.Context, invoice *domain.Invoice, now time.Time) error {
	template := s.cfg.InvoiceNumberTemplate
	if strings.TrimSpace(template) == "" {
		template = invoiceformat.DefaultInvoiceNumberTemplate
	}

	invoice.ID = s.genID.Generate()
	invoice.Metadata = datatypes.JSONMap{}
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	for i := range invoice.Items {
		invoice.Items[i].ID = s.genID.Generate()
		invoice.Items[i].InvoiceID = invoice.ID
		invoice.Items[i].CreatedAt = now
	}

	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			seq, err := s.repo.NextInvoiceNumber(ctx, tx)
			if err != nil {
				return err
			}
			number, err := invoiceformat.FormatInvoiceNumber(template, invoice.Date, seq)
			if err != nil {
				return err
			}
			invoice.InvoiceNumber = seq
			invoice.Number = number
			return s.repo.Insert(ctx, tx, invoice)
		})
		if err == nil || !db.IsDuplicateKeyErr(err) {
			return err
		}
		s.log.Warn("invoice number collision, retrying", zap.Int("attempt", attempt+1))
	}
	return err
}

func (s *Service) CreateFromSale(ctx context.Context, saleID string) (domain.Response, error) {
	sale, err := s.saleSvc.Get(ctx, saleID)
	if err != nil {
		if errors.Is(err, saledomain.ErrInvalidID) {
			return domain.Response{}, domain.ErrInvalidSale
		}
		return domain.Response{}, err
	}

	description := sale.Description
	if description == "" {
		description = describeSale(sale)
	}

	return s.Create(ctx, domain.CreateRequest{
		CustomerID: sale.CustomerID.String(),
		SaleID:     sale.ID.String(),
		Date:       &sale.Date,
		Items: []domain.ItemRequest{
			{Description: description, Quantity: 1, UnitPrice: sale.Amount},
		},
	})
}

func (s *Service) Get(ctx context.Context, id string) (domain.Response, error) {
	invoice, err := s.load(ctx, s.db, id)
	if err != nil {
		return domain.Response{}, err
	}
	return s.toResponse(*invoice, s.customerName(ctx, invoice.CustomerID), s.clock.Now()), nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	var filter domain.ListFilter
	if strings.TrimSpace(req.CustomerID) != "" {
		id, err := parseID(req.CustomerID, domain.ErrInvalidCustomer)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.CustomerID = &id
	}

	now := s.clock.Now()
	if strings.TrimSpace(req.Status) != "" {
		status, err := parseStatus(req.Status)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.Status = status
		filter.Now = now
	}
	filter.From = req.From
	if req.To != nil {
		to := req.To.AddDate(0, 0, 1)
		filter.To = &to
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: int(req.PageSize)}
	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}
	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Size(), func(inv *domain.Invoice) string {
		return pagination.CursorFor(inv.ID.String(), inv.CreatedAt)
	})

	customers, err := s.customerSvc.All(ctx)
	if err != nil {
		return domain.ListResponse{}, err
	}
	directory := customerdomain.NewDirectory(customers)

	invoices := make([]domain.Response, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, s.toResponse(*item, directory.NameOf(item.CustomerID), now))
	}

	return domain.ListResponse{PageInfo: pageInfo, Invoices: invoices}, nil
}

func (s *Service) UpdateItems(ctx context.Context, id string, items []domain.ItemRequest) (domain.Response, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, invoice *domain.Invoice, now time.Time) error {
		invoice.Items = toItems(items)
		if err := domain.Recompute(invoice, invoice.TaxRate); err != nil {
			return err
		}
		for i := range invoice.Items {
			invoice.Items[i].ID = s.genID.Generate()
			invoice.Items[i].InvoiceID = invoice.ID
			invoice.Items[i].CreatedAt = now
		}
		if err := s.repo.ReplaceItems(ctx, tx, invoice); err != nil {
			return err
		}
		return s.repo.UpdateTotals(ctx, tx, invoice)
	})
}

func (s *Service) UpdateDates(ctx context.Context, id string, req domain.UpdateDatesRequest) (domain.Response, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, invoice *domain.Invoice, now time.Time) error {
		if req.Date != nil && !req.Date.IsZero() {
			invoice.Date = req.Date.UTC()
		}
		if req.DueDate != nil && !req.DueDate.IsZero() {
			invoice.DueDate = req.DueDate.UTC()
		}
		if invoice.DueDate.Before(invoice.Date) {
			return domain.ErrInvalidDueDate
		}
		overridden, tax := invoice.TaxOverridden, invoice.Tax
		if err := domain.Recompute(invoice, invoice.TaxRate); err != nil {
			return err
		}
		if overridden {
			if err := domain.OverrideTax(invoice, tax); err != nil {
				return err
			}
		}
		return s.repo.UpdateTotals(ctx, tx, invoice)
	})
}

func (s *Service) OverrideTax(ctx context.Context, id string, tax decimal.Decimal) (domain.Response, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, invoice *domain.Invoice, now time.Time) error {
		if err := domain.OverrideTax(invoice, tax); err != nil {
			return err
		}
		return s.repo.UpdateTotals(ctx, tx, invoice)
	})
}

func (s *Service) SetStatus(ctx context.Context, id string, status string) (domain.Response, error) {
	target, err := parseStatus(status)
	if err != nil {
		return domain.Response{}, err
	}

	invoiceID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.Response{}, err
	}

	now := s.clock.Now()
	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}

		invoice.Status = target
		invoice.PaidAt = nil
		if target == domain.StatusPaid {
			invoice.PaidAt = &now
		}
		invoice.UpdatedAt = now
		if err := s.repo.UpdateStatus(ctx, tx, invoice); err != nil {
			return err
		}
		updated = *invoice
		return nil
	})
	if err != nil {
		return domain.Response{}, err
	}

	s.log.Info("invoice status set",
		zap.String("invoice_id", updated.ID.String()),
		zap.String("status", string(target)),
	)
	return s.toResponse(updated, s.customerName(ctx, updated.CustomerID), now), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, invoiceID)
}

// mutate loads an unpaid invoice under lock and persists the changes made by fn.
func (s *Service) mutate(ctx context.Context, id string, fn func(tx *gorm.DB, invoice *domain.Invoice, now time.Time) error) (domain.Response, error) {
	invoiceID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.Response{}, err
	}

	now := s.clock.Now()
	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}
		if invoice.Status == domain.StatusPaid {
			return domain.ErrInvoicePaid
		}

		invoice.UpdatedAt = now
		if err := fn(tx, invoice, now); err != nil {
			return err
		}
		updated = *invoice
		return nil
	})
	if err != nil {
		return domain.Response{}, err
	}
	return s.toResponse(updated, s.customerName(ctx, updated.CustomerID), now), nil
}

func (s *Service) load(ctx context.Context, tx *gorm.DB, id string) (*domain.Invoice, error) {
	invoiceID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) customerName(ctx context.Context, id snowflake.ID) string {
	customer, err := s.customerSvc.GetByID(ctx, id.String())
	if err != nil {
		if !errors.Is(err, customerdomain.ErrNotFound) {
			s.log.Warn("customer lookup failed", zap.String("customer_id", id.String()), zap.Error(err))
		}
		return customerdomain.UnknownName
	}
	return customer.Name
}

func (s *Service) toResponse(invoice domain.Invoice, customerName string, now time.Time) domain.Response {
	if invoice.Items == nil {
		invoice.Items = []domain.InvoiceItem{}
	}
	return domain.Response{
		Invoice:       invoice,
		DisplayStatus: domain.DisplayStatus(invoice, now),
		CustomerName:  customerName,
	}
}

func toItems(reqs []domain.ItemRequest) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(reqs))
	for _, req := range reqs {
		items = append(items, domain.InvoiceItem{
			Description: req.Description,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
		})
	}
	return items
}

func describeSale(sale saledomain.Sale) string {
	switch {
	case sale.IsRecharge():
		if sale.PhoneNumber != "" {
			return "Recharge " + sale.PhoneNumber
		}
		return "Recharge"
	case sale.BusinessType.IsTravel():
		if sale.Origin != "" && sale.Destination != "" {
			return fmt.Sprintf("Travel %s - %s", sale.Origin, sale.Destination)
		}
		return "Travel booking"
	case sale.BusinessType != "":
		return strings.ReplaceAll(string(sale.BusinessType), "_", " ")
	default:
		return "Sale " + sale.ID.String()
	}
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}

func parseStatus(value string) (domain.Status, error) {
	status := domain.Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case domain.StatusPaid, domain.StatusUnpaid, domain.StatusOverdue:
		return status, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
