package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/config"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/internal/money"
	plandomain "github.com/smallbiznis/rechargedesk/internal/plan/domain"
	"github.com/smallbiznis/rechargedesk/internal/sale/domain"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Billing     *config.BillingConfigHolder
	Repo        domain.Repository
	CustomerSvc customerdomain.Service
	PlanSvc     plandomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	billing     *config.BillingConfigHolder
	repo        domain.Repository
	customerSvc customerdomain.Service
	planSvc     plandomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("sale.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		billing:     p.Billing,
		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
		planSvc:     p.PlanSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Sale, error) {
	customer, err := s.customerSvc.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customerdomain.ErrInvalidID) {
			return domain.Sale{}, domain.ErrInvalidCustomer
		}
		return domain.Sale{}, err
	}

	var planID *snowflake.ID
	if strings.TrimSpace(req.PlanID) != "" {
		plan, err := s.planSvc.Get(ctx, req.PlanID)
		if err != nil {
			if errors.Is(err, plandomain.ErrInvalidID) {
				return domain.Sale{}, domain.ErrInvalidPlan
			}
			return domain.Sale{}, err
		}
		planID = &plan.ID
	}

	businessType, err := parseBusinessType(req.BusinessType)
	if err != nil {
		return domain.Sale{}, err
	}
	method, err := parsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return domain.Sale{}, err
	}
	orderStatus, err := parseOrderStatus(req.OrderStatus, domain.OrderStatusDelivered)
	if err != nil {
		return domain.Sale{}, err
	}

	amount := req.Amount
	profit := req.Profit
	if businessType.IsTravel() && (req.CustomerFare != nil || req.OurFare != nil) {
		if req.CustomerFare == nil || req.OurFare == nil ||
			req.CustomerFare.IsNegative() || req.OurFare.IsNegative() {
			return domain.Sale{}, domain.ErrInvalidFare
		}
		margin := money.Round2(req.CustomerFare.Sub(*req.OurFare))
		profit = &margin
		if amount.IsZero() {
			amount = *req.CustomerFare
		}
	}
	if amount.IsNegative() {
		return domain.Sale{}, domain.ErrInvalidAmount
	}
	if profit != nil {
		rounded := money.Round2(*profit)
		profit = &rounded
	}

	paid := amount
	if req.AmountPaid != nil {
		paid = *req.AmountPaid
	}
	if paid.IsNegative() {
		return domain.Sale{}, domain.ErrInvalidAmountPaid
	}

	paymentStatus := domain.DerivePaymentStatus(amount, paid)
	if strings.TrimSpace(req.PaymentStatus) != "" {
		paymentStatus, err = parsePaymentStatus(req.PaymentStatus)
		if err != nil {
			return domain.Sale{}, err
		}
	}

	now := s.clock.Now()
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.UTC()
	}

	sale := domain.Sale{
		ID:            s.genID.Generate(),
		CustomerID:    customer.ID,
		PlanID:        planID,
		Description:   strings.TrimSpace(req.Description),
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		Carrier:       strings.TrimSpace(req.Carrier),
		Amount:        money.Round2(amount),
		AmountPaid:    money.Round2(paid),
		Date:          date,
		PaymentMethod: method,
		PaymentStatus: paymentStatus,
		OrderStatus:   orderStatus,
		BusinessType:  businessType,
		Profit:        profit,
		CustomerFare:  req.CustomerFare,
		OurFare:       req.OurFare,
		Origin:        strings.TrimSpace(req.Origin),
		Destination:   strings.TrimSpace(req.Destination),
		DepartureDate: req.DepartureDate,
		Metadata:      datatypes.JSONMap{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if sale.PhoneNumber == "" && businessType == domain.BusinessTypeTelecomRecharge {
		sale.PhoneNumber = customer.Phone
	}

	if err := s.repo.Insert(ctx, s.db, &sale); err != nil {
		return domain.Sale{}, err
	}

	s.log.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("business_type", string(sale.BusinessType)),
		zap.String("amount", sale.Amount.StringFixed(2)),
	)
	return sale, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Sale, error) {
	saleID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.Sale{}, err
	}

	sale, err := s.repo.FindByID(ctx, s.db, saleID)
	if err != nil {
		return domain.Sale{}, err
	}
	if sale == nil {
		return domain.Sale{}, domain.ErrNotFound
	}
	return *sale, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		BusinessTypePrefix: domain.NormalizePrefix(req.BusinessType),
		From:               req.From,
	}
	if strings.TrimSpace(req.CustomerID) != "" {
		id, err := parseID(req.CustomerID, domain.ErrInvalidCustomer)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.CustomerID = &id
	}
	if strings.TrimSpace(req.PaymentStatus) != "" {
		status, err := parsePaymentStatus(req.PaymentStatus)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.PaymentStatus = status
	}
	if req.To != nil {
		if req.From != nil && req.To.Before(*req.From) {
			return domain.ListResponse{}, domain.ErrInvalidDateRange
		}
		// The end date is inclusive of the whole day.
		to := req.To.AddDate(0, 0, 1)
		filter.To = &to
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: int(req.PageSize)}
	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Size(), func(sale *domain.Sale) string {
		return pagination.CursorFor(sale.ID.String(), sale.CreatedAt)
	})

	sales := make([]domain.Sale, 0, len(items))
	for _, item := range items {
		if item != nil {
			sales = append(sales, *item)
		}
	}
	return domain.ListResponse{PageInfo: pageInfo, Sales: sales}, nil
}

func (s *Service) Between(ctx context.Context, from, to time.Time, businessTypePrefix string) ([]domain.Sale, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}
	return s.repo.FindAll(ctx, s.db, domain.ListFilter{
		BusinessTypePrefix: domain.NormalizePrefix(businessTypePrefix),
		From:               &from,
		To:                 &to,
	})
}

func (s *Service) RecordPayment(ctx context.Context, id string, amount decimal.Decimal) (domain.Sale, error) {
	saleID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.Sale{}, err
	}
	if !amount.IsPositive() {
		return domain.Sale{}, domain.ErrInvalidAmountPaid
	}

	var updated domain.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}

		sale.AmountPaid = money.Round2(sale.AmountPaid.Add(amount))
		sale.PaymentStatus = domain.DerivePaymentStatus(sale.Amount, sale.AmountPaid)
		sale.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdatePayment(ctx, tx, sale); err != nil {
			return err
		}
		updated = *sale
		return nil
	})
	if err != nil {
		return domain.Sale{}, err
	}

	s.log.Info("payment recorded",
		zap.String("sale_id", updated.ID.String()),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("payment_status", string(updated.PaymentStatus)),
	)
	return updated, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status string) (domain.Sale, error) {
	target, err := parseOrderStatus(status, "")
	if err != nil {
		return domain.Sale{}, err
	}

	sale, err := s.Get(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	if sale.OrderStatus == target {
		return sale, nil
	}

	sale.OrderStatus = target
	sale.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateOrderStatus(ctx, s.db, &sale); err != nil {
		return domain.Sale{}, err
	}
	return sale, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	saleID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, saleID)
}

func (s *Service) RechargeWindow(ctx context.Context, id string) (domain.Window, error) {
	sale, err := s.Get(ctx, id)
	if err != nil {
		return domain.Window{}, err
	}
	if !sale.IsRecharge() {
		return domain.Window{}, domain.ErrNotRecharge
	}
	return domain.RechargeWindow(sale, s.clock.Now(), s.policy()), nil
}

// RechargeReminders lists recharges whose expiry falls inside either reminder window
// and that have not been reminded yet, soonest expiry first.
func (s *Service) RechargeReminders(ctx context.Context) ([]domain.RechargeReminder, error) {
	now := s.clock.Now()
	policy := s.policy()

	from := now.AddDate(0, 0, -(policy.ValidityDays + policy.WindowDays))
	to := now.AddDate(0, 0, policy.WindowDays-policy.ValidityDays).Add(time.Second)
	sales, err := s.repo.FindAll(ctx, s.db, domain.ListFilter{
		From:            &from,
		To:              &to,
		RechargesOnly:   true,
		ReminderPending: true,
	})
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return []domain.RechargeReminder{}, nil
	}

	customers, err := s.customerSvc.All(ctx)
	if err != nil {
		return nil, err
	}
	directory := customerdomain.NewDirectory(customers)

	reminders := make([]domain.RechargeReminder, 0, len(sales))
	for _, sale := range sales {
		if sale.OrderStatus == domain.OrderStatusCanceled {
			continue
		}
		window := domain.RechargeWindow(sale, now, policy)
		if !window.CanSendReminder {
			continue
		}
		reminders = append(reminders, domain.RechargeReminder{
			Sale:         sale,
			Window:       window,
			CustomerName: directory.NameOf(sale.CustomerID),
		})
	}
	return reminders, nil
}

func (s *Service) ClaimReminder(ctx context.Context, id string) error {
	return s.setReminderSent(ctx, id, true, domain.ErrReminderAlreadySent)
}

func (s *Service) ReleaseReminder(ctx context.Context, id string) error {
	return s.setReminderSent(ctx, id, false, nil)
}

func (s *Service) setReminderSent(ctx context.Context, id string, sent bool, conflict error) error {
	saleID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	changed, err := s.repo.SetReminderSent(ctx, s.db, saleID, sent, s.clock.Now())
	if err != nil || changed {
		return err
	}

	sale, err := s.repo.FindByID(ctx, s.db, saleID)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrNotFound
	}
	return conflict
}

func (s *Service) policy() domain.RechargePolicy {
	cfg := s.billing.Get()
	return domain.RechargePolicy{
		ValidityDays: cfg.RechargeValidityDays,
		WindowDays:   cfg.RechargeReminderWindowDays,
	}
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}

func parseBusinessType(value string) (domain.BusinessType, error) {
	bt := domain.BusinessType(strings.ToLower(strings.TrimSpace(value)))
	if bt == "" {
		return "", nil
	}
	if !bt.IsTelecom() && !bt.IsTravel() {
		return "", domain.ErrInvalidBusinessType
	}
	if bt == domain.PrefixTelecom || bt == domain.PrefixTravel {
		return "", domain.ErrInvalidBusinessType
	}
	return bt, nil
}

func parsePaymentMethod(value string) (domain.PaymentMethod, error) {
	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(value)))
	switch method {
	case domain.PaymentMethodCash,
		domain.PaymentMethodCard,
		domain.PaymentMethodBankTransfer,
		domain.PaymentMethodMobileWallet,
		domain.PaymentMethodOther:
		return method, nil
	default:
		return "", domain.ErrInvalidPaymentMethod
	}
}

func parsePaymentStatus(value string) (domain.PaymentStatus, error) {
	status := domain.PaymentStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case domain.PaymentStatusPaid, domain.PaymentStatusPartial, domain.PaymentStatusUnpaid:
		return status, nil
	default:
		return "", domain.ErrInvalidPaymentStatus
	}
}

func parseOrderStatus(value string, fallback domain.OrderStatus) (domain.OrderStatus, error) {
	status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(value)))
	if status == "" && fallback != "" {
		return fallback, nil
	}
	switch status {
	case domain.OrderStatusDelivered, domain.OrderStatusCanceled, domain.OrderStatusProcessing:
		return status, nil
	default:
		return "", domain.ErrInvalidOrderStatus
	}
}
