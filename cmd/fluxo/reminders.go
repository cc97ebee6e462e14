package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/fluxo/fluxo-backend/internal/config"
	"github.com/dafibh/fluxo/fluxo-backend/internal/messaging"
	"github.com/dafibh/fluxo/fluxo-backend/internal/repository/postgres"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Operate the reminder notification pipeline",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "Run one reminder scan and publish the reminders falling due",
		Args:  cobra.NoArgs,
		RunE:  runRemindersScan,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Print reminder notifications as they arrive on the queue",
		Args:  cobra.NoArgs,
		RunE:  runRemindersWatch,
	})

	return cmd
}

func runRemindersScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	var publisher messaging.ReminderPublisher = messaging.NewNoOpPublisher()
	if cfg.AMQP.URL != "" {
		client, err := messaging.NewClient(ctx, cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, log.Logger)
		if err != nil {
			return fmt.Errorf("connect to broker: %w", err)
		}
		defer client.Close()
		publisher = client
	} else {
		log.Warn().Msg("AMQP_URL not set, due reminders are marked without being published")
	}

	worker := service.NewReminderWorker(postgres.NewReminderRepository(pool), publisher, nil, log.Logger, service.ReminderWorkerConfig{
		Interval:      cfg.Reminder.Interval,
		LookaheadDays: cfg.Reminder.LookaheadDays,
	})
	result := worker.RunOnce(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "rolled=%d notified=%d errors=%d\n", result.Rolled, result.Notified, result.Errors)
	if result.Errors > 0 {
		return fmt.Errorf("%d reminders failed", result.Errors)
	}
	return nil
}

func runRemindersWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.LoadBroker()
	if err != nil {
		return err
	}

	client, err := messaging.NewClient(ctx, cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, log.Logger)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	err = client.ConsumeReminderDue(ctx, func(msg *messaging.ReminderDueMessage) error {
		valor := "-"
		if msg.Valor != nil {
			valor = msg.Valor.StringFixed(2)
		}
		_, err := fmt.Fprintf(out, "%s\tcliente=%d\t%s\t%s\t%s <%s>\n",
			msg.Vencimento, msg.ClientID, msg.Descricao, valor, msg.Nome, msg.Telefone)
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
