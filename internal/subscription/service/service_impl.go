package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/config"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	plandomain "github.com/smallbiznis/rechargedesk/internal/plan/domain"
	"github.com/smallbiznis/rechargedesk/internal/subscription/domain"
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
		log:         p.Log.Named("subscription.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		billing:     p.Billing,
		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
		planSvc:     p.PlanSvc,
	}
}

func (s *Service) Subscribe(ctx context.Context, req domain.SubscribeRequest) (domain.Record, error) {
	customer, err := s.customerSvc.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customerdomain.ErrInvalidID) {
			return domain.Record{}, domain.ErrInvalidCustomer
		}
		return domain.Record{}, err
	}

	plan, err := s.planSvc.Get(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, plandomain.ErrInvalidID) {
			return domain.Record{}, domain.ErrInvalidPlan
		}
		return domain.Record{}, err
	}
	if !plan.Active {
		return domain.Record{}, domain.ErrInvalidPlan
	}

	now := s.clock.Now()
	start := now
	if req.StartDate != nil && !req.StartDate.IsZero() {
		start = req.StartDate.UTC()
	}

	status := domain.StatusActive
	if start.After(now) {
		status = domain.StatusPending
	}

	record := domain.CustomerPlan{
		ID:         s.genID.Generate(),
		CustomerID: customer.ID,
		PlanID:     plan.ID,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, plan.DurationDays),
		Status:     status,
		Price:      plan.Price,
		Notes:      strings.TrimSpace(req.Notes),
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		return domain.Record{}, err
	}

	s.log.Info("customer subscribed",
		zap.String("subscription_id", record.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("plan_id", plan.ID.String()),
		zap.String("status", string(record.Status)),
	)

	return domain.Record{
		CustomerPlan:   record,
		Classification: domain.Classify(record, now, s.window()),
		CustomerName:   customer.Name,
		PlanName:       plan.Name,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Record, error) {
	planID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.Record{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return domain.Record{}, err
	}
	if item == nil {
		return domain.Record{}, domain.ErrNotFound
	}

	records, err := s.toRecords(ctx, []domain.CustomerPlan{*item})
	if err != nil {
		return domain.Record{}, err
	}
	return records[0], nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Record, error) {
	var filter domain.ListFilter
	if strings.TrimSpace(req.CustomerID) != "" {
		id, err := parseID(req.CustomerID, domain.ErrInvalidCustomer)
		if err != nil {
			return nil, err
		}
		filter.CustomerID = &id
	}
	if strings.TrimSpace(req.PlanID) != "" {
		id, err := parseID(req.PlanID, domain.ErrInvalidPlan)
		if err != nil {
			return nil, err
		}
		filter.PlanID = &id
	}

	status, err := parseStatusFilter(req.Status)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	records, err := s.toRecords(ctx, items)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return records, nil
	}

	filtered := make([]domain.Record, 0, len(records))
	for _, record := range records {
		if record.Classification.Status == *status {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

func (s *Service) Activate(ctx context.Context, id string) (domain.Record, error) {
	return s.transition(ctx, id, domain.StatusActive)
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Record, error) {
	return s.transition(ctx, id, domain.StatusCanceled)
}

func (s *Service) transition(ctx context.Context, id string, target domain.Status) (domain.Record, error) {
	planID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.Record{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByIDForUpdate(ctx, tx, planID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.Status == target {
			return nil
		}
		if !isTransitionAllowed(item.Status, target) {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		if target == domain.StatusCanceled {
			item.CanceledAt = &now
		}
		item.Status = target
		item.UpdatedAt = now
		return s.repo.UpdateStatus(ctx, tx, item)
	})
	if err != nil {
		return domain.Record{}, err
	}

	s.log.Info("subscription transitioned",
		zap.String("subscription_id", planID.String()),
		zap.String("status", string(target)),
	)
	return s.Get(ctx, id)
}

func (s *Service) ClaimReminder(ctx context.Context, id string) error {
	return s.setReminderSent(ctx, id, true, domain.ErrReminderAlreadySent)
}

func (s *Service) ReleaseReminder(ctx context.Context, id string) error {
	return s.setReminderSent(ctx, id, false, nil)
}

func (s *Service) setReminderSent(ctx context.Context, id string, sent bool, conflict error) error {
	planID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	changed, err := s.repo.SetReminderSent(ctx, s.db, planID, sent, s.clock.Now())
	if err != nil || changed {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return conflict
}

// ExpiringSoon lists active plans ending within the configured window, soonest first.
func (s *Service) ExpiringSoon(ctx context.Context) ([]domain.Record, error) {
	now := s.clock.Now()
	window := s.window()
	// Classification truncates to whole days, so the window upper bound spans one extra day.
	to := now.AddDate(0, 0, window+1)

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Statuses: []domain.Status{domain.StatusActive, domain.StatusExpired},
		EndFrom:  &now,
		EndTo:    &to,
	})
	if err != nil {
		return nil, err
	}

	return s.toRecords(ctx, domain.ExpiringSoon(items, now, window))
}

func (s *Service) ReminderCandidates(ctx context.Context) ([]domain.Record, error) {
	records, err := s.ExpiringSoon(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	window := s.window()
	candidates := make([]domain.Record, 0, len(records))
	for _, record := range records {
		if domain.CanSendReminder(record.CustomerPlan, now, window) {
			candidates = append(candidates, record)
		}
	}
	return candidates, nil
}

func (s *Service) window() int {
	return s.billing.Get().PlanExpiringSoonDays
}

func (s *Service) toRecords(ctx context.Context, items []domain.CustomerPlan) ([]domain.Record, error) {
	if len(items) == 0 {
		return []domain.Record{}, nil
	}

	customers, err := s.customerSvc.All(ctx)
	if err != nil {
		return nil, err
	}
	directory := customerdomain.NewDirectory(customers)

	plans, err := s.planSvc.List(ctx, plandomain.ListRequest{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	planNames := make(map[snowflake.ID]string, len(plans))
	for _, plan := range plans {
		planNames[plan.ID] = plan.Name
	}

	now := s.clock.Now()
	window := s.window()
	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		records = append(records, domain.Record{
			CustomerPlan:   item,
			Classification: domain.Classify(item, now, window),
			CustomerName:   directory.NameOf(item.CustomerID),
			PlanName:       planNames[item.PlanID],
		})
	}
	return records, nil
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}

func isTransitionAllowed(current, target domain.Status) bool {
	switch current {
	case domain.StatusPending:
		return target == domain.StatusActive || target == domain.StatusCanceled
	case domain.StatusActive, domain.StatusExpired:
		return target == domain.StatusCanceled
	default:
		return false
	}
}

func parseStatusFilter(value string) (*domain.Status, error) {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return nil, nil
	}

	switch domain.Status(status) {
	case domain.StatusActive, domain.StatusExpired, domain.StatusPending:
		parsed := domain.Status(status)
		return &parsed, nil
	default:
		return nil, domain.ErrInvalidStatus
	}
}
