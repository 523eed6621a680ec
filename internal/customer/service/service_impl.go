package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return domain.Customer{}, err
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.Customer{}, err
	}

	now := s.clock.Now()
	joinDate := now
	if req.JoinDate != nil && !req.JoinDate.IsZero() {
		joinDate = req.JoinDate.UTC()
	}

	customer := domain.Customer{
		ID:        s.genID.Generate(),
		Name:      name,
		Phone:     phone,
		Email:     email,
		Address:   strings.TrimSpace(req.Address),
		Carrier:   strings.TrimSpace(req.Carrier),
		Notes:     strings.TrimSpace(req.Notes),
		JoinDate:  joinDate,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	s.log.Info("customer created", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customer, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidName
		}
		customer.Name = name
	}
	if req.Phone != nil {
		phone, err := normalizePhone(*req.Phone)
		if err != nil {
			return domain.Customer{}, err
		}
		customer.Phone = phone
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return domain.Customer{}, err
		}
		customer.Email = email
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
	}
	if req.Carrier != nil {
		customer.Carrier = strings.TrimSpace(*req.Carrier)
	}
	if req.Notes != nil {
		customer.Notes = strings.TrimSpace(*req.Notes)
	}
	customer.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customerID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, customerID); err != nil {
		return err
	}
	s.log.Info("customer deleted", zap.String("customer_id", customerID.String()))
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		Email:      strings.TrimSpace(req.Email),
		JoinedFrom: req.JoinedFrom,
		JoinedTo:   req.JoinedTo,
	}

	page := pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(req.PageSize),
	}

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Size(), func(customer *domain.Customer) string {
		return pagination.CursorFor(customer.ID.String(), customer.CreatedAt)
	})

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	return domain.ListCustomerResponse{PageInfo: pageInfo, Customers: customers}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) All(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.All(ctx, s.db)
}

func (s *Service) AddNumber(ctx context.Context, req domain.AddNumberRequest) (domain.CustomerNumber, error) {
	customer, err := s.GetByID(ctx, req.CustomerID)
	if err != nil {
		return domain.CustomerNumber{}, err
	}

	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return domain.CustomerNumber{}, err
	}

	number := domain.CustomerNumber{
		ID:         s.genID.Generate(),
		CustomerID: customer.ID,
		Phone:      phone,
		Carrier:    strings.TrimSpace(req.Carrier),
		Label:      strings.TrimSpace(req.Label),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.InsertNumber(ctx, s.db, &number); err != nil {
		return domain.CustomerNumber{}, err
	}
	return number, nil
}

func (s *Service) ListNumbers(ctx context.Context, customerID string) ([]domain.CustomerNumber, error) {
	customer, err := s.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListNumbers(ctx, s.db, customer.ID)
}

func (s *Service) RemoveNumber(ctx context.Context, customerID, numberID string) error {
	cid, err := parseID(customerID)
	if err != nil {
		return err
	}
	nid, err := parseID(numberID)
	if err != nil {
		return err
	}
	return s.repo.DeleteNumber(ctx, s.db, cid, nid)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", domain.ErrInvalidPhone
	}
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", domain.ErrInvalidPhone
		}
	}
	if digits < 6 {
		return "", domain.ErrInvalidPhone
	}
	return phone, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", nil
	}
	if !strings.Contains(email, "@") {
		return "", domain.ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}
