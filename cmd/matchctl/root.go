package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nkpro29/chuckle-match-ai/internal/app/apiapp"
	"github.com/Nkpro29/chuckle-match-ai/internal/config"
	"github.com/Nkpro29/chuckle-match-ai/internal/infra/logger"
	pgrepo "github.com/Nkpro29/chuckle-match-ai/internal/repo/postgres"
)

const app = "matchctl"

var errNoPostgres = errors.New("matchctl needs a postgres dsn (POSTGRES_DSN or postgres.dsn)")

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           app,
		Short:         "matchctl inspects and drives the humor compatibility matcher",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "configs/config.yaml", "config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newMigrateCmd(flags),
		newSeedCmd(flags),
		newRankCmd(flags),
		newActionCmd(flags, "like"),
		newActionCmd(flags, "pass"),
		newMatchesCmd(flags),
		newWatchCmd(flags),
	)
	return root
}

type runtime struct {
	cfg config.Config
	log *zap.Logger
}

func loadRuntime(flags *globalFlags) (*runtime, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	log, err := logger.New(cfg.Log.Level, app)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, log: log}, nil
}

func (rt *runtime) close() {
	_ = rt.log.Sync()
}

// openApp wires the same service graph the API serves. The CLI always
// talks to postgres since an in-memory store would be empty.
func (rt *runtime) openApp(ctx context.Context) (*apiapp.App, error) {
	if rt.cfg.Postgres.DSN == "" {
		return nil, errNoPostgres
	}
	rt.cfg.Postgres.AutoMigrate = false
	return apiapp.New(ctx, rt.cfg, rt.log)
}

func (rt *runtime) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if rt.cfg.Postgres.DSN == "" {
		return nil, errNoPostgres
	}
	return pgrepo.NewPool(ctx, pgrepo.PoolConfig{
		DSN:            rt.cfg.Postgres.DSN,
		MaxConns:       int32(rt.cfg.Postgres.MaxConns),
		ConnectTimeout: rt.cfg.Postgres.ConnectTimeout,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
