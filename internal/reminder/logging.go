package reminder

import (
	"context"
	"time"

	"github.com/smallbiznis/rechargedesk/pkg/log/ctxlogger"
	"github.com/smallbiznis/rechargedesk/pkg/telemetry/correlation"
	"go.uber.org/zap"
)

// Result counts what a job run did with its candidates.
type Result struct {
	Processed int
	Sent      int
	Skipped   int
	Failed    int
}

func (r *Result) add(other Result) {
	r.Processed += other.Processed
	r.Sent += other.Sent
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

type jobRun struct {
	job       string
	runID     string
	startedAt time.Time
	result    Result
}

type jobRunKey struct{}

func (j *Job) startRun(ctx context.Context, job string) (context.Context, *jobRun) {
	if existing, ok := ctx.Value(jobRunKey{}).(*jobRun); ok {
		return ctx, existing
	}
	run := &jobRun{
		job:       job,
		runID:     j.genID.Generate().String(),
		startedAt: time.Now(),
	}
	ctx = context.WithValue(ctx, jobRunKey{}, run)
	ctx = correlation.With(ctx, correlation.SourceReminder, run.runID)
	return ctx, run
}

func (j *Job) logger(ctx context.Context) *zap.Logger {
	return ctxlogger.WithContext(ctx, j.log)
}

func (j *Job) logJobStart(ctx context.Context, run *jobRun) {
	j.logger(ctx).Info("reminder.job.start",
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
	)
}

func (j *Job) logJobFinish(ctx context.Context, run *jobRun, err error) {
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", time.Since(run.startedAt).Milliseconds()),
		zap.Int("processed_count", run.result.Processed),
		zap.Int("sent_count", run.result.Sent),
		zap.Int("skipped_count", run.result.Skipped),
		zap.Int("error_count", run.result.Failed),
	}
	if err != nil {
		j.logger(ctx).Warn("reminder.job.finish", append(fields, zap.Error(err))...)
		return
	}
	j.logger(ctx).Info("reminder.job.finish", fields...)
}
