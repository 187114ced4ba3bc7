package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cancerflow/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk result cache",
		Long: `Manage the file cache that stores grouped counts and rendered diagrams
between runs. Memory, Redis and MongoDB caches expire on their own.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return err
			}

			count, err := fc.Len()
			if err != nil {
				return fmt.Errorf("scan cache: %w", err)
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cacheDir returns the file cache directory from the config, falling back
// to the per-user cache directory.
func (c *CLI) cacheDir() (string, error) {
	cfg, err := c.loadConfig("")
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

func (c *CLI) fileCache() (*cache.FileCache, error) {
	dir, err := c.cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}
