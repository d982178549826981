package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volmap/storage"
)

var mirrorTarget string

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Copy the organizations into MongoDB or PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		mirror, err := openMirror(ctx, mirrorTarget)
		if err != nil {
			return err
		}
		defer func() {
			if err := mirror.Close(context.Background()); err != nil {
				log.Warn("Failed to close mirror", zap.Error(err))
			}
		}()

		n, err := mirror.Sync(ctx, table)
		if err != nil {
			return err
		}
		log.Info("Mirror complete", zap.String("target", mirrorTarget), zap.Int("records", n))
		return nil
	},
}

func init() {
	mirrorCmd.Flags().StringVar(&mirrorTarget, "target", "mongo", "mirror target: mongo or postgres")
}

func openMirror(ctx context.Context, target string) (storage.Mirror, error) {
	switch target {
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is not set")
		}
		return storage.NewMongoMirror(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	case "postgres":
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("POSTGRES_URL is not set")
		}
		return storage.NewPostgresMirror(ctx, cfg.PostgresURL, log)
	default:
		return nil, fmt.Errorf("unknown mirror target %q (want mongo or postgres)", target)
	}
}
