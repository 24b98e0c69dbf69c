package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
)

func newRankCmd(flags *globalFlags) *cobra.Command {
	var (
		userID int64
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the ranked candidate queue for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.close()

			a, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Shutdown(context.Background()) }()

			ranked, err := a.Service().Rank(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ranked)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "caller user id")
	cmd.Flags().IntVar(&limit, "limit", 0, "max candidates (default from config)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newActionCmd(flags *globalFlags, action string) *cobra.Command {
	var userID, targetID int64

	cmd := &cobra.Command{
		Use:   action,
		Short: fmt.Sprintf("Record a %s from one user to another", action),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.close()

			a, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Shutdown(context.Background()) }()

			svc := a.Service()
			run := svc.Like
			if action == "pass" {
				run = svc.Pass
			}

			result, err := run(cmd.Context(), userID, targetID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "acting user id")
	cmd.Flags().Int64Var(&targetID, "target", 0, "target user id")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newMatchesCmd(flags *globalFlags) *cobra.Command {
	var (
		userID int64
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List a user's matches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.close()

			a, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Shutdown(context.Background()) }()

			rows, err := a.Service().ListMatches(cmd.Context(), userID, enums.MatchStatus(status), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&status, "status", string(enums.MatchStatusMutual), "pending, mutual or declined")
	cmd.Flags().IntVar(&limit, "limit", 50, "max rows")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
