package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"beatmap-manager/core/config"
	"beatmap-manager/core/database"
	"beatmap-manager/core/logger"
	"beatmap-manager/core/osuapi"
	"beatmap-manager/core/storage"

	"beatmap-manager/feature/beatmap"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cleanupCreator string
	cleanupYes     bool
)

// cleanupCmd removes abandoned private submissions: sets a creator allocated
// but never finished uploading.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete a creator's inactive private submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanupCreator == "" {
			return fmt.Errorf("--creator is required")
		}

		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console"})
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		if !cleanupYes {
			fmt.Printf("Delete ALL inactive submissions of %q, including their scores? [y/N] ", cleanupCreator)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(strings.ToLower(answer)) != "y" {
				fmt.Println("aborted")
				return nil
			}
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}

		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		api := osuapi.NewClient(cfg.Api, logg)
		feature := beatmap.NewFeature(db, store, cfg.Storage.Bucket, api, cfg.Cache, cfg.Server.Domain, logg)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		n, err := feature.Service().DeleteInactive(ctx, cleanupCreator)
		if err != nil {
			return err
		}

		fmt.Printf("deleted %d inactive map(s)\n", n)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupCreator, "creator", "", "creator whose inactive submissions to delete")
	cleanupCmd.Flags().BoolVar(&cleanupYes, "yes", false, "skip the confirmation prompt")
	RootCmd.AddCommand(cleanupCmd)
}
