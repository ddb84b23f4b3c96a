package reminder

import (
	"context"
	"time"

	"county-task-api/entity"
	"county-task-api/pkg/mailer"

	"github.com/sirupsen/logrus"
)

type TaskStore interface {
	FindDue(ctx context.Context, from time.Time, to time.Time) ([]entity.Task, error)
	AppendReminder(ctx context.Context, taskID int64, reminder entity.Reminder) error
}

type CountyStore interface {
	FindOneById(ctx context.Context, id int64) (entity.County, error)
}

// Engine walks tasks approaching their deadline and emails the owning county.
// A task is reminded at most once per dedup window; a failed email still
// counts as a reminder so the county is not spammed on a flaky SMTP day.
type Engine struct {
	logger        *logrus.Logger
	tasks         TaskStore
	counties      CountyStore
	mailer        mailer.Mailer
	interval      time.Duration
	lookahead     time.Duration
	dedupWindow   time.Duration
	fallbackEmail string

	now  func() time.Time
	stop chan struct{}
	done chan struct{}
}

func NewEngine(logger *logrus.Logger, tasks TaskStore, counties CountyStore, m mailer.Mailer, interval time.Duration, lookahead time.Duration, dedupWindow time.Duration, fallbackEmail string) *Engine {
	return &Engine{
		logger:        logger,
		tasks:         tasks,
		counties:      counties,
		mailer:        m,
		interval:      interval,
		lookahead:     lookahead,
		dedupWindow:   dedupWindow,
		fallbackEmail: fallbackEmail,
		now:           time.Now,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start runs the sweep loop in its own goroutine: one sweep immediately, then
// one per interval until Stop.
func (e *Engine) Start() {
	go func() {
		defer close(e.done)

		if err := e.RunOnce(context.Background()); err != nil {
			e.logger.Errorf("reminder sweep failed: %v", err)
		}

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-e.stop:
				return
			case <-ticker.C:
				if err := e.RunOnce(context.Background()); err != nil {
					e.logger.Errorf("reminder sweep failed: %v", err)
				}
			}
		}
	}()
}

// Stop ends the loop and waits for any in-flight sweep to finish.
func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
}

// RunOnce performs a single sweep. One failed task never blocks the rest of
// the batch.
func (e *Engine) RunOnce(ctx context.Context) error {
	now := e.now()

	tasks, err := e.tasks.FindDue(ctx, now, now.Add(e.lookahead))
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if e.remindedRecently(task, now) {
			continue
		}
		e.remind(ctx, task, now)
	}

	return nil
}

func (e *Engine) remind(ctx context.Context, task entity.Task, now time.Time) {
	county, err := e.counties.FindOneById(ctx, task.CountyID)
	if err != nil {
		e.logger.Errorf("reminder for task %d: county %d lookup failed: %v", task.ID, task.CountyID, err)
		return
	}

	emailTo := county.Email
	if emailTo == "" {
		emailTo = e.fallbackEmail
	}

	if err := e.mailer.SendReminder(emailTo, county.Name, task.Title, task.Deadline); err != nil {
		e.logger.Errorf("reminder email for task %d failed: %v", task.ID, err)
	}

	if err := e.tasks.AppendReminder(ctx, task.ID, entity.Reminder{
		SentAt: now,
		Origin: entity.SystemOrigin(),
	}); err != nil {
		e.logger.Errorf("failed to record reminder for task %d: %v", task.ID, err)
	}
}

func (e *Engine) remindedRecently(task entity.Task, now time.Time) bool {
	cutoff := now.Add(-e.dedupWindow)
	for _, reminder := range task.Reminders {
		if reminder.SentAt.After(cutoff) {
			return true
		}
	}
	return false
}
