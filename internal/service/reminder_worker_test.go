package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/messaging"
	"github.com/dafibh/fluxo/fluxo-backend/internal/testutil"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReminderWorker(now time.Time) (*ReminderWorker, *testutil.MockReminderRepository, *testutil.MockReminderPublisher, *testutil.MockEventPublisher) {
	repo := testutil.NewMockReminderRepository()
	publisher := &testutil.MockReminderPublisher{}
	events := &testutil.MockEventPublisher{}

	config := ReminderWorkerConfig{
		Interval:      100 * time.Millisecond, // Fast interval for testing
		LookaheadDays: 3,
	}
	worker := NewReminderWorker(repo, publisher, events, zerolog.Nop(), config)
	worker.now = func() time.Time { return now }
	return worker, repo, publisher, events
}

func day(s string) time.Time {
	d, err := util.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d.Add(10 * time.Hour)
}

func TestReminderWorker_DefaultConfig(t *testing.T) {
	config := DefaultReminderWorkerConfig()

	assert.Equal(t, 1*time.Hour, config.Interval)
	assert.Equal(t, 3, config.LookaheadDays)
}

func TestReminderWorker_NewAppliesDefaults(t *testing.T) {
	worker := NewReminderWorker(testutil.NewMockReminderRepository(), nil, nil, zerolog.Nop(), ReminderWorkerConfig{LookaheadDays: -1})

	assert.Equal(t, 1*time.Hour, worker.interval)
	assert.Equal(t, 0, worker.lookaheadDays)
	assert.False(t, worker.IsRunning())
}

func TestReminderWorker_StartStop(t *testing.T) {
	worker, _, _, _ := setupReminderWorker(time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx) // idempotent
	time.Sleep(50 * time.Millisecond)
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestReminderWorker_StopWithoutStart(t *testing.T) {
	worker, _, _, _ := setupReminderWorker(time.Now())

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestReminderWorker_NotifiesWithinLookahead(t *testing.T) {
	worker, repo, publisher, events := setupReminderWorker(day("2024-05-10"))
	repo.AddReminder(&domain.Reminder{ID: 1, ClientID: 1, Descricao: "Hoje", Tipo: domain.ReminderTypeOneOff, Vencimento: "2024-05-10", Telefone: "11987654321"})
	repo.AddReminder(&domain.Reminder{ID: 2, ClientID: 1, Descricao: "Em 3 dias", Tipo: domain.ReminderTypeOneOff, Vencimento: "2024-05-13"})
	repo.AddReminder(&domain.Reminder{ID: 3, ClientID: 2, Descricao: "Em 4 dias", Tipo: domain.ReminderTypeOneOff, Vencimento: "2024-05-14"})

	result := worker.RunOnce(context.Background())

	assert.Equal(t, 2, result.Notified)
	assert.Equal(t, 0, result.Errors)

	published := publisher.Published()
	require.Len(t, published, 2)
	assert.Equal(t, int32(1), published[0].ReminderID)
	assert.Equal(t, "11987654321", published[0].Telefone)
	assert.Equal(t, int32(2), published[1].ReminderID)

	assert.NotNil(t, repo.Reminders[1].NotificadoEm)
	assert.NotNil(t, repo.Reminders[2].NotificadoEm)
	assert.Nil(t, repo.Reminders[3].NotificadoEm)
	assert.Equal(t, []string{"reminder.notified", "reminder.notified"}, events.Types())

	// a second scan does not notify again
	again := worker.RunOnce(context.Background())
	assert.Equal(t, 0, again.Notified)
	assert.Len(t, publisher.Published(), 2)
}

func TestReminderWorker_RollsFixedRemindersForward(t *testing.T) {
	worker, repo, publisher, _ := setupReminderWorker(day("2024-03-05"))
	notified := day("2024-01-29")
	repo.AddReminder(&domain.Reminder{ID: 1, ClientID: 1, Tipo: domain.ReminderTypeFixed, Vencimento: "2024-01-31", NotificadoEm: &notified})
	repo.AddReminder(&domain.Reminder{ID: 2, ClientID: 1, Tipo: domain.ReminderTypeOneOff, Vencimento: "2024-01-31", NotificadoEm: &notified})

	result := worker.RunOnce(context.Background())

	assert.Equal(t, 1, result.Rolled)
	// Jan 31 -> Feb 29 -> Mar 29
	assert.Equal(t, "2024-03-29", repo.Reminders[1].Vencimento)
	assert.Nil(t, repo.Reminders[1].NotificadoEm)
	assert.Equal(t, "2024-01-31", repo.Reminders[2].Vencimento, "eventual reminders stay put")
	assert.Empty(t, publisher.Published())
}

func TestReminderWorker_RolledReminderDueSoonIsNotified(t *testing.T) {
	worker, repo, publisher, _ := setupReminderWorker(day("2024-05-09"))
	notified := day("2024-04-08")
	repo.AddReminder(&domain.Reminder{ID: 1, ClientID: 1, Tipo: domain.ReminderTypeFixed, Vencimento: "2024-04-10", NotificadoEm: &notified})

	result := worker.RunOnce(context.Background())

	assert.Equal(t, 1, result.Rolled)
	assert.Equal(t, 1, result.Notified)
	assert.Equal(t, "2024-05-10", repo.Reminders[1].Vencimento)
	require.Len(t, publisher.Published(), 1)
	assert.Equal(t, "2024-05-10", publisher.Published()[0].Vencimento)
}

func TestReminderWorker_PublishFailureLeavesPending(t *testing.T) {
	worker, repo, publisher, events := setupReminderWorker(day("2024-05-10"))
	repo.AddReminder(&domain.Reminder{ID: 1, ClientID: 1, Tipo: domain.ReminderTypeOneOff, Vencimento: "2024-05-10"})
	publisher.PublishFn = func(msg *messaging.ReminderDueMessage) error {
		return errors.New("broker down")
	}

	result := worker.RunOnce(context.Background())

	assert.Equal(t, 0, result.Notified)
	assert.Equal(t, 1, result.Errors)
	assert.Nil(t, repo.Reminders[1].NotificadoEm)
	assert.Empty(t, events.Types())
}

func TestReminderWorker_SkipsUnparseableDueDate(t *testing.T) {
	worker, repo, _, _ := setupReminderWorker(day("2024-05-10"))
	repo.AddReminder(&domain.Reminder{ID: 1, ClientID: 1, Tipo: domain.ReminderTypeFixed, Vencimento: "2024-00-01"})

	result := worker.RunOnce(context.Background())

	assert.Equal(t, 0, result.Rolled)
	assert.GreaterOrEqual(t, result.Errors, 1)
}
