// Command authcore-loadtest drives an authcore engine through login and
// token verification under concurrency and prints latency percentiles.
//
// With no --redis.addr an in-memory Redis is started. With --database.url the
// seeded users are written to PostgreSQL and read back through credstore;
// otherwise they live in process memory.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nuworks/authcore"
	"github.com/nuworks/authcore/configfile"
	"github.com/nuworks/authcore/credstore"
	"github.com/nuworks/authcore/internal/logging"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

var version = "dev"

type runOptions struct {
	configPath  string
	users       int
	concurrency int
	ops         int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:           "authcore-loadtest",
		Short:         "Load test login and token verification",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := run(ctx, cmd, opts); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.IntVar(&opts.users, "users", 1000, "number of users to seed")
	flags.IntVar(&opts.concurrency, "concurrency", 16, "number of concurrent workers")
	flags.IntVar(&opts.ops, "ops", 20000, "operations per phase")
	configfile.RegisterFlags(flags)

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts *runOptions) error {
	if opts.users <= 0 || opts.concurrency <= 0 || opts.ops <= 0 {
		return errors.New("users, concurrency and ops must be > 0")
	}

	cfg, err := configfile.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	logger := logging.Setup(logging.Options{
		Service: "authcore-loadtest",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
		Writer:  cmd.ErrOrStderr(),
	})
	fillSecrets(&cfg.Auth)

	client, closeRedis, err := openRedis(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	users, err := newUserSet(opts.users)
	if err != nil {
		return err
	}

	var store authcore.CredentialStore = users
	if cfg.Database.URL != "" {
		pool, err := credstore.Open(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		pg := credstore.New(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := users.copyTo(ctx, pool); err != nil {
			return err
		}
		store = pg
		logger.InfoContext(ctx, "using postgres credential store")
	}

	engine, err := authcore.New().
		WithConfig(cfg.Auth).
		WithRedis(client).
		WithCredentialStore(store).
		WithLogger(logger).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seeded %d users, %d workers, %d ops per phase\n", opts.users, opts.concurrency, opts.ops)

	sessions := make([]seededSession, min(opts.ops, len(users.list)))
	login := runPhase(ctx, opts.ops, opts.concurrency, func(ctx context.Context, i int) error {
		idx := i % len(sessions)
		u := users.list[idx]
		return sessions[idx].replace(func() (string, string, error) {
			res, err := engine.Authenticate(ctx, authcore.Credentials{
				Email:    u.Email,
				AuthType: authcore.AuthTypeEmail,
				Password: &users.password,
			}, "127.0.0.1", "authcore-loadtest")
			if err != nil {
				return "", "", err
			}
			return res.AccessToken, res.RefreshToken, nil
		}, u.ID)
	})

	access := runPhase(ctx, opts.ops, opts.concurrency, func(ctx context.Context, i int) error {
		s := sessions[i%len(sessions)].load()
		_, err := engine.VerifyAccess(ctx, s.access)
		return err
	})

	refresh := runPhase(ctx, opts.ops, opts.concurrency, func(ctx context.Context, i int) error {
		s := sessions[i%len(sessions)].load()
		_, err := engine.VerifyRefresh(ctx, s.refresh, s.userID)
		return err
	})

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "authenticate", login)
	printStats(out, "verify_access", access)
	printStats(out, "verify_refresh", refresh)

	snap := engine.MetricsSnapshot()
	logger.InfoContext(ctx, "engine counters",
		slog.Any("counters", snap.Counters),
		slog.Uint64("audit_dropped", engine.AuditDropped()),
	)
	return ctx.Err()
}

// fillSecrets generates throwaway signing keys when none were configured.
func fillSecrets(cfg *authcore.Config) {
	if cfg.JWT.AccessSecret == "" {
		cfg.JWT.AccessSecret = "loadtest-access-" + time.Now().Format(time.RFC3339Nano)
	}
	if cfg.JWT.RefreshSecret == "" {
		cfg.JWT.RefreshSecret = "loadtest-refresh-" + time.Now().Format(time.RFC3339Nano)
	}
}

func openRedis(cfg configfile.RedisConfig, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	addr := cfg.Addr
	var mr *miniredis.Miniredis
	if addr == "" {
		var err error
		mr, err = miniredis.Run()
		if err != nil {
			return nil, nil, oops.In("loadtest").Wrapf(err, "start miniredis")
		}
		addr = mr.Addr()
		logger.Info("using miniredis", slog.String("addr", addr))
	} else {
		logger.Info("using redis", slog.String("addr", addr))
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{addr},
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return client, func() {
		_ = client.Close()
		if mr != nil {
			mr.Close()
		}
	}, nil
}
