package main

import (
	"context"
	"os"

	"github.com/paddockhq/dealflow/pkg/cmd"
	"github.com/paddockhq/dealflow/pkg/log"
	"github.com/paddockhq/dealflow/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

const defaultSchedule = "@every 15m"

func main() {
	logger := log.WithModule("reminders")

	command := &cli.Command{
		Name:                  "dealflow-reminders",
		Usage:                 "Emit pending-requirement reminder events for active deals",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "reminders-id",
				Usage:   "Reminder service instance ID (auto-generated if not provided)",
				Sources: cli.EnvVars("REMINDERS_ID"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron schedule for the reminder sweep",
				Value:   defaultSchedule,
				Sources: cli.EnvVars("REMINDERS_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			remindersID := command.String("reminders-id")
			if remindersID == "" {
				remindersID = generateRemindersID()
			}

			logger.InfoContext(ctx, "Initializing Dealflow reminder service", "reminders_id", remindersID)

			tracer, err := otelhelper.NewTracer(ctx, "dealflow-reminders")
			if err != nil {
				return err
			}

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "dealflow-reminders", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			reminders := NewReminders(remindersID, logger, store, eventBus, tracer)

			return reminders.Start(ctx, command.String("schedule"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
