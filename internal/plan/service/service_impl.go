package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/plan/domain"
	"github.com/smallbiznis/rechargedesk/pkg/db"
	"github.com/smallbiznis/rechargedesk/pkg/db/option"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("plan.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	code := slug.Make(strings.TrimSpace(req.Code))
	if code == "" {
		code = slug.Make(name)
	}
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	if req.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if req.DurationDays <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	existing, err := s.repo.FindOne(ctx, &domain.Plan{Code: code})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCode
	}

	now := s.clock.Now()
	plan := domain.Plan{
		ID:           s.genID.Generate(),
		Code:         code,
		Name:         name,
		Carrier:      strings.TrimSpace(req.Carrier),
		Description:  strings.TrimSpace(req.Description),
		Price:        req.Price.Round(2),
		DurationDays: req.DurationDays,
		Data:         strings.TrimSpace(req.Data),
		Calls:        strings.TrimSpace(req.Calls),
		Texts:        strings.TrimSpace(req.Texts),
		Active:       true,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, &plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}

	s.log.Info("plan created", zap.String("plan_id", plan.ID.String()), zap.String("code", plan.Code))
	return &plan, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Plan, error) {
	planID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.FindOne(ctx, &domain.Plan{ID: planID})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	return plan, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Plan, error) {
	opts := []option.QueryOption{option.WithOrder("price asc, name asc")}
	if !req.IncludeInactive {
		opts = append(opts, option.WithWhere("active = ?", true))
	}

	items, err := s.repo.Find(ctx, &domain.Plan{Carrier: strings.TrimSpace(req.Carrier)}, opts...)
	if err != nil {
		return nil, err
	}

	plans := make([]domain.Plan, 0, len(items))
	for _, item := range items {
		if item != nil {
			plans = append(plans, *item)
		}
	}
	return plans, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Plan, error) {
	plan, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Carrier != nil {
		fields["carrier"] = strings.TrimSpace(*req.Carrier)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		fields["price"] = req.Price.Round(2)
	}
	if req.DurationDays != nil {
		if *req.DurationDays <= 0 {
			return nil, domain.ErrInvalidDuration
		}
		fields["duration_days"] = *req.DurationDays
	}
	if req.Data != nil {
		fields["data"] = strings.TrimSpace(*req.Data)
	}
	if req.Calls != nil {
		fields["calls"] = strings.TrimSpace(*req.Calls)
	}
	if req.Texts != nil {
		fields["texts"] = strings.TrimSpace(*req.Texts)
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if len(fields) == 0 {
		return plan, nil
	}
	fields["updated_at"] = s.clock.Now()

	if err := s.repo.Update(ctx, plan.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s.Get(ctx, plan.ID.String())
}

// Delete retires the plan from the catalog. Subscriptions keep referencing it.
func (s *Service) Delete(ctx context.Context, id string) error {
	planID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.repo.Update(ctx, planID, map[string]any{
		"active":     false,
		"updated_at": s.clock.Now(),
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
