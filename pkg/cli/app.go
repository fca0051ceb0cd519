// Package cli implements the nctl command line application.
package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/newscope/nctl/pkg/auth"
	"github.com/newscope/nctl/pkg/config"
	"github.com/newscope/nctl/pkg/data"
	"github.com/newscope/nctl/pkg/detector"
	"github.com/newscope/nctl/pkg/ensemble"
	"github.com/newscope/nctl/pkg/fusion"
	"github.com/newscope/nctl/pkg/logging"
	"github.com/newscope/nctl/pkg/rules"
	"github.com/newscope/nctl/pkg/sentiment"
	"github.com/newscope/nctl/pkg/sources"
)

const (
	appName      = "nctl"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFilePathFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the Sqlite database file",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// SetVersion records the build-time version info shown by the version
// command and the API health endpoint.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	date = d
}

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Home     string
	Config   *config.Config
	DB       *sql.DB
	Detector *detector.Detector
	Keys     *auth.Store
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Metadata:             map[string]any{},
		Usage:                "Analyze news content veracity from text, source, and image signals",
		Flags: []urfave.Flag{
			debugFlag,
			dbFilePathFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			analyzeCmd,
			sourcesCmd,
			historyCmd,
			cacheCmd,
			authCmd,
			serverCmd,
			versionCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				logging.SetDefaultCLILogger("debug")
			}

			f := c.String(formatFlag.Name)
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			home, _, err := config.GetOrCreateHomeDir(appName)
			if err != nil {
				return fmt.Errorf("resolving app home dir: %w", err)
			}

			cfg, err := config.ReadOrCreate(home)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			dbPath := c.String(dbFilePathFlag.Name)
			if dbPath == "" {
				dbPath = cfg.DBPath
			}
			if dbPath == "" {
				dbPath = path.Join(home, data.DataFileName)
			}

			if err := data.Init(dbPath); err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			db, err := data.GetDB(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}

			d, err := buildDetector(c, cfg, db)
			if err != nil {
				return fmt.Errorf("building detector: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Home:     home,
				Config:   cfg,
				DB:       db,
				Detector: d,
				Keys:     auth.NewStore(home),
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

// buildDetector assembles the analysis pipeline from the loaded config
// and any reviewed domain overrides in the database.
func buildDetector(c *urfave.Context, cfg *config.Config, db *sql.DB) (*detector.Detector, error) {
	weights, err := ensemble.NewWeightTable(cfg.Weights)
	if err != nil {
		return nil, err
	}

	textCfg, err := fusion.Customize(fusion.TextConfig(), toKinds(cfg.Text.Budgets), toBands(cfg.Text.Ladder))
	if err != nil {
		return nil, err
	}
	imageCfg, err := fusion.Customize(fusion.ImageConfig(), toKinds(cfg.Image.Budgets), toBands(cfg.Image.Ladder))
	if err != nil {
		return nil, err
	}

	var opts []sources.Option
	trusted, fake, err := data.DomainOverrides(c.Context, db)
	if err != nil {
		slog.Warn("failed to load domain overrides, using built-ins only", "error", err)
	} else {
		opts = append(opts, sources.WithTrustedOverrides(trusted), sources.WithFakeOverrides(fake))
	}

	return detector.New(detector.Options{
		Classifiers: []detector.Classifier{rules.NewTextClassifier()},
		Weights:     weights,
		Verifier:    sources.NewVerifier(opts...),
		Sentiment:   sentiment.NewAnalyzer(),
		TextConfig:  textCfg,
		ImageConfig: imageCfg,
		CacheSize:   cfg.Cache.MaxSize,
		CacheTTL:    cfg.Cache.TTLSeconds,
	})
}

func toKinds(budgets map[string]float64) map[fusion.Kind]float64 {
	out := make(map[fusion.Kind]float64, len(budgets))
	for k, v := range budgets {
		out[fusion.Kind(k)] = v
	}
	return out
}

func toBands(ladder []config.Band) []fusion.Band {
	out := make([]fusion.Band, 0, len(ladder))
	for _, b := range ladder {
		out = append(out, fusion.Band{Min: b.Min, Verdict: b.Verdict})
	}
	return out
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
