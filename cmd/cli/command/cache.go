package command

import (
	"fmt"

	"yatube/internal/cache"
	"yatube/internal/http-api/server"

	"github.com/spf13/cobra"
)

var cachePrefix string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Page cache commands",
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached pages so the next request renders fresh content",
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.RedisURL == "" {
			// the in-memory cache lives inside the server process
			fmt.Fprintln(cmd.OutOrStdout(), warning("REDIS_URL is not set; the running server keeps its own in-memory cache"))
			return nil
		}

		// must reach the same redis as the server
		store, err := cache.Dial(cache.Options{RedisURL: appConfig.RedisURL, RedisPassword: appConfig.RedisPassword}, appLogger)
		if err != nil {
			return fmt.Errorf("failed to connect to the cache: %w", err)
		}
		defer store.Close()

		n, err := cache.Clear(cmd.Context(), store, cachePrefix)
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("✓ %d cached pages removed", n)))
		return nil
	},
}

func init() {
	clearCacheCmd.Flags().StringVar(&cachePrefix, "prefix", server.IndexCachePrefix, "cache key prefix")

	cacheCmd.AddCommand(clearCacheCmd)
}
