package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/messaging"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/dafibh/fluxo/fluxo-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// ReminderWorker is a background worker that publishes due reminders and
// rolls recurring (fixo) reminders forward once their due date has passed
type ReminderWorker struct {
	reminderRepo   domain.ReminderRepository
	publisher      messaging.ReminderPublisher
	eventPublisher websocket.EventPublisher
	logger         zerolog.Logger
	interval       time.Duration
	lookaheadDays  int
	now            func() time.Time
	stopCh         chan struct{}
	doneCh         chan struct{}
	mu             sync.Mutex
	running        bool
}

// ReminderWorkerConfig holds configuration for the reminder worker
type ReminderWorkerConfig struct {
	Interval      time.Duration // How often to scan reminders
	LookaheadDays int           // Notify reminders due within this many days
}

// DefaultReminderWorkerConfig returns sensible defaults
func DefaultReminderWorkerConfig() ReminderWorkerConfig {
	return ReminderWorkerConfig{
		Interval:      1 * time.Hour,
		LookaheadDays: 3,
	}
}

// ReminderRunResult summarizes one scan
type ReminderRunResult struct {
	Rolled   int
	Notified int
	Errors   int
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(
	reminderRepo domain.ReminderRepository,
	publisher messaging.ReminderPublisher,
	eventPublisher websocket.EventPublisher,
	logger zerolog.Logger,
	config ReminderWorkerConfig,
) *ReminderWorker {
	if config.Interval <= 0 {
		config.Interval = 1 * time.Hour
	}
	if config.LookaheadDays < 0 {
		config.LookaheadDays = 0
	}
	if publisher == nil {
		publisher = messaging.NewNoOpPublisher()
	}
	if eventPublisher == nil {
		eventPublisher = &websocket.NoOpPublisher{}
	}

	return &ReminderWorker{
		reminderRepo:   reminderRepo,
		publisher:      publisher,
		eventPublisher: eventPublisher,
		logger:         logger.With().Str("component", "reminder_worker").Logger(),
		interval:       config.Interval,
		lookaheadDays:  config.LookaheadDays,
		now:            time.Now,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background reminder scan
func (w *ReminderWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Int("lookahead_days", w.lookaheadDays).
		Msg("Starting reminder worker")

	go w.run(ctx)
}

// Stop gracefully stops the reminder worker
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping reminder worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Reminder worker stopped")
}

// IsRunning returns whether the worker is currently running
func (w *ReminderWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ReminderWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	// Run immediately on startup
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce rolls overdue fixo reminders forward, then publishes every
// reminder due within the lookahead window that was not notified yet
func (w *ReminderWorker) RunOnce(ctx context.Context) ReminderRunResult {
	startTime := time.Now()
	today := util.StartOfDay(w.now())
	var result ReminderRunResult

	overdue, err := w.reminderRepo.GetOverdueFixed(ctx, today)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to load overdue fixed reminders")
		result.Errors++
	}
	for _, r := range overdue {
		due, err := util.ParseDate(r.Vencimento)
		if err != nil {
			w.logger.Warn().Int32("reminder_id", r.ID).Str("vencimento", r.Vencimento).Msg("Skipping reminder with unparseable due date")
			result.Errors++
			continue
		}
		for due.Before(today) {
			due = util.NextMonthSameDay(due)
		}
		if err := w.reminderRepo.Reschedule(ctx, r.ID, due); err != nil {
			w.logger.Error().Err(err).Int32("reminder_id", r.ID).Msg("Failed to roll reminder forward")
			result.Errors++
			continue
		}
		result.Rolled++
	}

	until := today.AddDate(0, 0, w.lookaheadDays)
	pending, err := w.reminderRepo.GetPendingUntil(ctx, until)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to load pending reminders")
		result.Errors++
		return result
	}
	for _, r := range pending {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Context cancelled, stopping reminder scan")
			return result
		default:
		}

		if err := w.publisher.PublishReminderDue(ctx, messaging.NewReminderDueMessage(r)); err != nil {
			// left pending, retried on the next tick
			w.logger.Error().Err(err).Int32("reminder_id", r.ID).Msg("Failed to publish reminder")
			result.Errors++
			continue
		}
		notifiedAt := w.now().UTC()
		if err := w.reminderRepo.MarkNotified(ctx, r.ID, notifiedAt); err != nil {
			w.logger.Error().Err(err).Int32("reminder_id", r.ID).Msg("Failed to mark reminder notified")
			result.Errors++
			continue
		}
		r.NotificadoEm = &notifiedAt
		w.eventPublisher.Publish(r.ClientID, websocket.ReminderNotified(r))
		result.Notified++
	}

	w.logger.Info().
		Int("rolled", result.Rolled).
		Int("notified", result.Notified).
		Int("errors", result.Errors).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed reminder scan")
	return result
}
