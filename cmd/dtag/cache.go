package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/discogs-tagger/internal/discogs"
	"github.com/franz/discogs-tagger/internal/util"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clean the release cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show release cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(c *discogs.Cache) error {
			stats, err := c.GetStats()
			if err != nil {
				return fmt.Errorf("failed to read cache stats: %w", err)
			}
			util.InfoLog("Cached releases: %d", stats.Entries)
			util.InfoLog("Cache hits: %d", stats.TotalHits)
			util.InfoLog("Payload size: %s", humanize.Bytes(uint64(stats.Bytes)))
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached release",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(c *discogs.Cache) error {
			n, err := c.ClearCache()
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			util.SuccessLog("Removed %d cached releases", n)
			return nil
		})
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cached releases older than --older-than",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			return fmt.Errorf("%w: --older-than must be positive", util.ErrInvalidConfig)
		}
		return withCache(func(c *discogs.Cache) error {
			n, err := c.ClearOldEntries(olderThan)
			if err != nil {
				return fmt.Errorf("failed to prune cache: %w", err)
			}
			util.SuccessLog("Removed %d releases fetched before %s", n, humanize.Time(time.Now().Add(-olderThan)))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cachePruneCmd)

	cachePruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "age of the entries to remove")
}

// withCache opens the state database and runs fn on its release cache
func withCache(fn func(*discogs.Cache) error) error {
	db, err := openStore(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer db.Close()

	_, cache, err := newCatalog(db)
	if err != nil {
		return err
	}
	return fn(cache)
}
