package cli

import (
	urfave "github.com/urfave/cli/v2"
)

var cacheCmd = &urfave.Command{
	Name:  "cache",
	Usage: "Inspect and manage the result caches",
	Subcommands: []*urfave.Command{
		{
			Name:   "stats",
			Usage:  "Show cache sizes and hit rates",
			Action: runCacheStatsCmd,
		},
		{
			Name:   "clear",
			Usage:  "Drop all cached results",
			Action: runCacheClearCmd,
		},
	},
}

func runCacheStatsCmd(c *urfave.Context) error {
	return encode(getConfig(c).Detector.CacheStats())
}

func runCacheClearCmd(c *urfave.Context) error {
	getConfig(c).Detector.ClearCaches()
	return encode(map[string]string{"status": "cleared"})
}
