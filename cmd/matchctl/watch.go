package main

import (
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
	redrepo "github.com/Nkpro29/chuckle-match-ai/internal/repo/redis"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream mutual match events until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.cfg.Redis.Addr == "" {
				return errors.New("matchctl watch needs a redis addr (REDIS_ADDR or redis.addr)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := redrepo.NewClient(rt.cfg.Redis.Addr, rt.cfg.Redis.Password, rt.cfg.Redis.DB)
			defer func() { _ = client.Close() }()

			events := redrepo.NewEventRepo(client, redrepo.EventRepoConfig{Channel: rt.cfg.Notify.Channel})
			sub := events.Subscribe(ctx)
			defer func() { _ = sub.Close() }()

			ch := sub.Channel()
			for {
				select {
				case <-ctx.Done():
					return nil
				case msg, ok := <-ch:
					if !ok {
						return nil
					}
					var event model.MutualMatchEvent
					if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
						rt.log.Warn("skip malformed match event", zap.Error(err))
						continue
					}
					if err := printJSON(cmd.OutOrStdout(), event); err != nil {
						return err
					}
				}
			}
		},
	}
}
