// Package reminder emails customers whose recharges or plans are about to lapse.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/config"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/rechargedesk/internal/observability/metrics"
	"github.com/smallbiznis/rechargedesk/internal/providers/email"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	subscriptiondomain "github.com/smallbiznis/rechargedesk/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobRechargeReminders = "recharge_reminders"
	JobPlanReminders     = "plan_reminders"

	resourceSale         = "sale"
	resourceSubscription = "subscription"

	dateLayout = "2006-01-02"
)

// ErrSkipped marks a candidate that cannot be emailed. It is counted, never returned.
var ErrSkipped = errors.New("reminder_skipped")

var ErrInvalidConfig = errors.New("invalid reminder config")

type Params struct {
	fx.In

	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	AppConfig       config.Config
	Config          Config `optional:"true"`
	SaleSvc         saledomain.Service
	SubscriptionSvc subscriptiondomain.Service
	CustomerSvc     customerdomain.Service
	Email           email.Provider
	Metrics         *obsmetrics.JobMetrics `optional:"true"`
}

type Job struct {
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	cfg             Config
	business        config.BusinessConfig
	saleSvc         saledomain.Service
	subscriptionSvc subscriptiondomain.Service
	customerSvc     customerdomain.Service
	email           email.Provider
	metrics         *obsmetrics.JobMetrics
}

func New(p Params) (*Job, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.SaleSvc == nil ||
		p.SubscriptionSvc == nil || p.CustomerSvc == nil || p.Email == nil {
		return nil, ErrInvalidConfig
	}
	return &Job{
		log:             p.Log.Named("reminder").With(zap.String("component", "reminder")),
		genID:           p.GenID,
		clock:           p.Clock,
		cfg:             p.Config.withDefaults(),
		business:        p.AppConfig.Business,
		saleSvc:         p.SaleSvc,
		subscriptionSvc: p.SubscriptionSvc,
		customerSvc:     p.CustomerSvc,
		email:           p.Email,
		metrics:         p.Metrics,
	}, nil
}

// RunOnce sends every due reminder. A failure on one job does not stop the other.
func (j *Job) RunOnce(parent context.Context) (Result, error) {
	var total Result
	var err error

	jobs := []struct {
		name string
		run  func(context.Context) (Result, error)
	}{
		{JobRechargeReminders, j.RechargeReminders},
		{JobPlanReminders, j.PlanReminders},
	}
	for _, job := range jobs {
		result, jobErr := j.runJob(parent, job.name, job.run)
		total.add(result)
		err = errors.Join(err, jobErr)
	}
	return total, err
}

func (j *Job) runJob(parent context.Context, name string, fn func(context.Context) (Result, error)) (Result, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, j.cfg.JobTimeout)
	defer cancel()

	ctx, run := j.startRun(ctx, name)
	j.logJobStart(ctx, run)
	j.metrics.IncRun(name)

	result, err := fn(ctx)
	run.result = result
	j.metrics.ObserveDuration(name, time.Since(start))
	j.logJobFinish(ctx, run, err)
	if err == nil {
		return result, nil
	}
	j.metrics.IncError(name, err)
	return result, fmt.Errorf("%s: %w", name, err)
}

// RunForever runs the jobs on the configured interval until ctx is canceled.
func (j *Job) RunForever(ctx context.Context) {
	ticker := time.NewTicker(j.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if _, err := j.RunOnce(ctx); err != nil {
			j.log.Warn("reminder run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RechargeReminders emails customers whose recharge is inside the reminder window.
func (j *Job) RechargeReminders(ctx context.Context) (Result, error) {
	candidates, err := j.saleSvc.RechargeReminders(ctx)
	if err != nil {
		return Result{}, err
	}

	var result Result
	var errs error
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return result, errors.Join(errs, err)
		}
		result.Processed++

		sale := candidate.Sale
		phone := sale.PhoneNumber
		if phone == "" {
			phone = "your line"
		}
		err := j.send(ctx, sale.CustomerID, email.TemplateRechargeReminder, map[string]any{
			"expired":      candidate.Window.HasRecentlyExpired,
			"phone_number": phone,
			"expiry_date":  candidate.Window.ExpiryDate.Format(dateLayout),
		}, reminderClaim{
			claim:   j.saleSvc.ClaimReminder,
			release: j.saleSvc.ReleaseReminder,
			id:      sale.ID.String(),
			taken:   saledomain.ErrReminderAlreadySent,
		})
		j.tally(ctx, &result, &errs, JobRechargeReminders, resourceSale, sale.ID, err)
	}
	return result, errs
}

// PlanReminders emails customers whose plan ends within the expiring-soon window.
func (j *Job) PlanReminders(ctx context.Context) (Result, error) {
	candidates, err := j.subscriptionSvc.ReminderCandidates(ctx)
	if err != nil {
		return Result{}, err
	}

	var result Result
	var errs error
	for _, record := range candidates {
		if err := ctx.Err(); err != nil {
			return result, errors.Join(errs, err)
		}
		result.Processed++

		planName := record.PlanName
		if planName == "" {
			planName = "current"
		}
		err := j.send(ctx, record.CustomerID, email.TemplatePlanReminder, map[string]any{
			"plan_name": planName,
			"end_date":  record.EndDate.Format(dateLayout),
			"days_left": record.Classification.DaysUntilExpiry,
		}, reminderClaim{
			claim:   j.subscriptionSvc.ClaimReminder,
			release: j.subscriptionSvc.ReleaseReminder,
			id:      record.ID.String(),
			taken:   subscriptiondomain.ErrReminderAlreadySent,
		})
		j.tally(ctx, &result, &errs, JobPlanReminders, resourceSubscription, record.ID, err)
	}
	return result, errs
}

// reminderClaim marks one reminder sent ahead of delivery so concurrent runs,
// in this process or another, email the customer at most once.
type reminderClaim struct {
	claim   func(ctx context.Context, id string) error
	release func(ctx context.Context, id string) error
	id      string
	taken   error
}

// send resolves the customer's address, claims the reminder and emails the
// template. It returns ErrSkipped when the customer cannot be reached or the
// reminder was already claimed. A failed send releases the claim for the next run.
func (j *Job) send(ctx context.Context, customerID snowflake.ID, template string, data map[string]any, rc reminderClaim) error {
	customer, err := j.customerSvc.GetByID(ctx, customerID.String())
	if err != nil {
		if errors.Is(err, customerdomain.ErrNotFound) {
			return fmt.Errorf("%w: customer %s not found", ErrSkipped, customerID)
		}
		return err
	}
	address := strings.TrimSpace(customer.Email)
	if address == "" {
		return fmt.Errorf("%w: customer %s has no email", ErrSkipped, customerID)
	}

	data["customer_name"] = customer.Name
	data["business_name"] = j.business.Name
	data["business_phone"] = j.business.Phone
	if err := rc.claim(ctx, rc.id); err != nil {
		if errors.Is(err, rc.taken) {
			return fmt.Errorf("%w: reminder %s already sent", ErrSkipped, rc.id)
		}
		return fmt.Errorf("claim reminder: %w", err)
	}
	if err := j.email.SendTemplate(ctx, []string{address}, template, data); err != nil {
		sendErr := fmt.Errorf("send %s: %w", template, err)
		if relErr := rc.release(context.WithoutCancel(ctx), rc.id); relErr != nil {
			return errors.Join(sendErr, fmt.Errorf("release reminder: %w", relErr))
		}
		return sendErr
	}
	return nil
}

func (j *Job) tally(ctx context.Context, result *Result, errs *error, job, resource string, id snowflake.ID, err error) {
	switch {
	case err == nil:
		result.Sent++
		j.metrics.AddItems(job, resource, obsmetrics.OutcomeSent, 1)
	case errors.Is(err, ErrSkipped):
		result.Skipped++
		j.metrics.AddItems(job, resource, obsmetrics.OutcomeSkipped, 1)
		j.logger(ctx).Debug("reminder skipped", zap.String("job", job), zap.String(resource+"_id", id.String()), zap.Error(err))
	default:
		result.Failed++
		j.metrics.AddItems(job, resource, obsmetrics.OutcomeFailed, 1)
		j.logger(ctx).Error("reminder failed", zap.String("job", job), zap.String(resource+"_id", id.String()), zap.Error(err))
		*errs = errors.Join(*errs, fmt.Errorf("%s %s: %w", resource, id, err))
	}
}
