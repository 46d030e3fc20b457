package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"beatmap-manager/core/config"
	"beatmap-manager/core/database"
	"beatmap-manager/core/logger"
	"beatmap-manager/core/osuapi"

	"beatmap-manager/feature/beatmap"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resolveMD5   string
	resolveID    int
	resolveSetID int
)

// resolveCmd resolves a single beatmap or set from the command line, walking
// the same store/API tiers as the HTTP server. Useful for checking what a
// running deployment would serve without going through auth.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a beatmap or set by md5, id or set id",
	RunE: func(cmd *cobra.Command, args []string) error {
		if resolveMD5 == "" && resolveID == 0 && resolveSetID == 0 {
			return fmt.Errorf("one of --md5, --id or --set is required")
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

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}

		api := osuapi.NewClient(cfg.Api, logg)
		cache := beatmap.NewMemoryIndex(0)
		resolver := beatmap.NewResolver(cache, beatmap.NewSQLStore(db), api, logg)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		switch {
		case resolveSetID != 0:
			set, err := resolver.ResolveSet(ctx, resolveSetID)
			if err != nil {
				return err
			}
			if set == nil {
				fmt.Printf("set %d not found\n", resolveSetID)
				return nil
			}
			printSet(set, cfg.Server.Domain)
		case resolveMD5 != "":
			b, err := resolver.ResolveByMD5(ctx, resolveMD5, -1)
			if err != nil {
				return err
			}
			printMap(b, cfg.Server.Domain)
		default:
			b, err := resolver.ResolveByID(ctx, resolveID)
			if err != nil {
				return err
			}
			printMap(b, cfg.Server.Domain)
		}

		return nil
	},
}

func printMap(b *beatmap.Beatmap, domain string) {
	if b == nil {
		fmt.Println("beatmap not found")
		return
	}
	fmt.Printf("%s\n", b.FullName())
	fmt.Printf("  md5:    %s\n", b.MD5)
	fmt.Printf("  id:     %d (set %d)\n", b.ID, b.SetID)
	fmt.Printf("  status: %s (frozen: %v)\n", b.Status, b.Frozen)
	fmt.Printf("  server: %s\n", b.Server)
	fmt.Printf("  url:    %s\n", b.URL(domain))
}

func printSet(set *beatmap.BeatmapSet, domain string) {
	fmt.Printf("set %d, %d map(s), last checked %s\n",
		set.ID, len(set.Maps), set.LastAPICheck.Format(time.RFC3339))
	for _, b := range set.Maps {
		printMap(b, domain)
	}
}

func init() {
	resolveCmd.Flags().StringVar(&resolveMD5, "md5", "", "beatmap md5 checksum")
	resolveCmd.Flags().IntVar(&resolveID, "id", 0, "beatmap id")
	resolveCmd.Flags().IntVar(&resolveSetID, "set", 0, "beatmapset id")
	RootCmd.AddCommand(resolveCmd)
}
