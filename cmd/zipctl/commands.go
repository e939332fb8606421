package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zipmap/zip-api/internal/pkg/database"
	"github.com/zipmap/zip-api/internal/pkg/jwt"
	"github.com/zipmap/zip-api/internal/pkg/kakao"
)

var (
	seedAfterMigrate bool
	tokenTTL         time.Duration

	rootCmd = &cobra.Command{
		Use:           "zipctl",
		Short:         "Operational tooling for the zip API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *sqlx.DB) error {
				if err := database.Migrate(ctx, db); err != nil {
					return err
				}
				if !seedAfterMigrate {
					return nil
				}
				return seedCategories(ctx, db, database.DefaultCategories)
			})
		},
	}

	seedCategoriesCmd = &cobra.Command{
		Use:   "seed-categories [name...]",
		Short: "Insert food categories (defaults when no names are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = database.DefaultCategories
			}
			return withDB(cmd.Context(), func(ctx context.Context, db *sqlx.DB) error {
				return seedCategories(ctx, db, names)
			})
		},
	}

	tokenCmd = &cobra.Command{
		Use:   "token [user-id]",
		Short: "Issue a bearer token for a user id (development only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to issue tokens in %s", cfg.Env)
			}
			token, err := jwt.NewService(cfg.JWTSecret).GenerateToken(args[0], tokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	searchCmd = &cobra.Command{
		Use:   "search [query...]",
		Short: "Run a place search against Kakao and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := kakao.NewClient(kakao.Options{
				BaseURL:        cfg.KakaoBaseURL,
				APIKey:         cfg.KakaoAPIKey,
				CategoryGroups: strings.Split(cfg.KakaoCategoryGroups, ","),
				Timeout:        cfg.KakaoTimeout,
				RatePerSecond:  cfg.KakaoRatePerSecond,
			})
			places, err := client.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			for _, p := range places {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.6f\t%.6f\n", p.Name, p.Address, p.Latitude, p.Longitude)
			}
			return nil
		},
	}
)

func init() {
	migrateCmd.Flags().BoolVar(&seedAfterMigrate, "seed", false, "Seed default food categories after migrating")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(migrateCmd, seedCategoriesCmd, tokenCmd, searchCmd)
}

func withDB(ctx context.Context, fn func(context.Context, *sqlx.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer database.ClosePostgres(db)
	return fn(ctx, db)
}

func seedCategories(ctx context.Context, db *sqlx.DB, names []string) error {
	added, err := database.SeedCategories(ctx, db, names)
	if err != nil {
		return err
	}
	log.Info().Int64("added", added).Int("requested", len(names)).Msg("Categories seeded")
	return nil
}
