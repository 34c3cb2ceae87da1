package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/config"
	"github.com/zulandar/taskflow/internal/db"
	"github.com/zulandar/taskflow/internal/logging"
	"github.com/zulandar/taskflow/internal/reminder"
	"github.com/zulandar/taskflow/internal/server"
	"github.com/zulandar/taskflow/internal/task"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		migrate    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and event streams",
		Long:  "Serves the /api routes and SSE streams. With redis.addr set, events are shared with other replicas through Redis pub/sub.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, migrate)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to taskflow config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run schema migrations before serving")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, migrate bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if migrate {
		if err := db.AutoMigrate(gormDB); err != nil {
			return err
		}
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	hub := broadcast.NewHub(log)
	if err := startRelay(ctx, cfg.Redis, hub, log); err != nil {
		return err
	}

	svc := task.New(gormDB, hub, log)
	if cfg.Reminders.On() {
		sweeper := reminder.New(gormDB, svc.Notifications(), cfg.Reminders.WindowDuration(), log)
		go sweeper.Run(ctx, cfg.Reminders.Schedule)
		log.WithField("schedule", cfg.Reminders.Schedule).Info("due-date reminders enabled")
	}

	return server.Start(ctx, server.StartOpts{
		Tasks: svc,
		Hub:   hub,
		Port:  cfg.Server.Port,
		Out:   cmd.OutOrStdout(),
		Log:   log,
	})
}

// startRelay connects the hub to Redis when an address is configured.
func startRelay(ctx context.Context, rc config.RedisConfig, hub *broadcast.Hub, log logrus.FieldLogger) error {
	if rc.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis at %s: %w", rc.Addr, err)
	}
	relay := broadcast.NewRedisRelay(client, rc.ChannelPrefix, hub, log)
	go func() {
		defer client.Close()
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("broadcast relay stopped")
		}
	}()
	log.WithField("addr", rc.Addr).Info("broadcast relay enabled")
	return nil
}
