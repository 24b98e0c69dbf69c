package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
	pgrepo "github.com/Nkpro29/chuckle-match-ai/internal/repo/postgres"
)

// fixture is the YAML layout accepted by `matchctl seed`. Artifacts are
// referenced from ratings by their local key since IDs are assigned on insert.
type fixture struct {
	Profiles []struct {
		UserID      int64  `yaml:"user_id"`
		Username    string `yaml:"username"`
		DisplayName string `yaml:"display_name"`
		Age         int    `yaml:"age"`
		Location    string `yaml:"location"`
		Bio         string `yaml:"bio"`
		AvatarURL   string `yaml:"avatar_url"`
	} `yaml:"profiles"`
	Artifacts []struct {
		Key      string `yaml:"key"`
		OwnerID  int64  `yaml:"owner_id"`
		Type     string `yaml:"type"`
		Content  string `yaml:"content"`
		Featured bool   `yaml:"featured"`
	} `yaml:"artifacts"`
	Ratings []struct {
		RaterID  int64  `yaml:"rater_id"`
		Artifact string `yaml:"artifact"`
		Rating   int    `yaml:"rating"`
	} `yaml:"ratings"`
}

type seedWriter interface {
	UpsertProfile(ctx context.Context, p model.Profile) error
	InsertArtifact(ctx context.Context, a model.Artifact) (model.Artifact, error)
	UpsertRating(ctx context.Context, r model.Rating) error
}

type seedSummary struct {
	Profiles  int `json:"profiles"`
	Artifacts int `json:"artifacts"`
	Ratings   int `json:"ratings"`
}

func parseFixture(data []byte) (fixture, error) {
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fixture{}, fmt.Errorf("unmarshal fixture yaml: %w", err)
	}

	keys := make(map[string]struct{}, len(fx.Artifacts))
	for i, a := range fx.Artifacts {
		if a.Key == "" {
			return fixture{}, fmt.Errorf("artifact %d: key is required", i)
		}
		if _, dup := keys[a.Key]; dup {
			return fixture{}, fmt.Errorf("artifact %d: duplicate key %q", i, a.Key)
		}
		if !enums.ArtifactType(a.Type).Valid() {
			return fixture{}, fmt.Errorf("artifact %q: unknown type %q", a.Key, a.Type)
		}
		keys[a.Key] = struct{}{}
	}
	for i, r := range fx.Ratings {
		if _, ok := keys[r.Artifact]; !ok {
			return fixture{}, fmt.Errorf("rating %d: unknown artifact %q", i, r.Artifact)
		}
	}
	return fx, nil
}

func applyFixture(ctx context.Context, w seedWriter, fx fixture) (seedSummary, error) {
	var summary seedSummary

	for _, p := range fx.Profiles {
		if err := w.UpsertProfile(ctx, model.Profile{
			UserID:      p.UserID,
			Username:    p.Username,
			DisplayName: p.DisplayName,
			Age:         p.Age,
			Location:    p.Location,
			Bio:         p.Bio,
			AvatarURL:   p.AvatarURL,
		}); err != nil {
			return summary, fmt.Errorf("seed profile %d: %w", p.UserID, err)
		}
		summary.Profiles++
	}

	ids := make(map[string]int64, len(fx.Artifacts))
	for _, a := range fx.Artifacts {
		stored, err := w.InsertArtifact(ctx, model.Artifact{
			OwnerID:    a.OwnerID,
			Type:       enums.ArtifactType(a.Type),
			Content:    a.Content,
			IsFeatured: a.Featured,
		})
		if err != nil {
			return summary, fmt.Errorf("seed artifact %q: %w", a.Key, err)
		}
		ids[a.Key] = stored.ID
		summary.Artifacts++
	}

	for _, r := range fx.Ratings {
		if err := w.UpsertRating(ctx, model.Rating{
			RaterID:    r.RaterID,
			ArtifactID: ids[r.Artifact],
			Value:      r.Rating,
		}); err != nil {
			return summary, fmt.Errorf("seed rating %d on %q: %w", r.RaterID, r.Artifact, err)
		}
		summary.Ratings++
	}

	return summary, nil
}

func newSeedCmd(flags *globalFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load profiles, artifacts and ratings from a YAML fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read fixture: %w", err)
			}
			fx, err := parseFixture(data)
			if err != nil {
				return err
			}

			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.close()

			pool, err := rt.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			var summary seedSummary
			err = pgrepo.WithWriteTx(cmd.Context(), pool, func(ctx context.Context, w pgrepo.WriteTx) error {
				applied, applyErr := applyFixture(ctx, w, fx)
				summary = applied
				return applyErr
			})
			if err != nil {
				return fmt.Errorf("seed fixture, nothing was written: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture yaml")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
