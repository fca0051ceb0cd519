package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"
)

var keyFlag = &urfave.StringFlag{
	Name:    "key",
	Aliases: []string{"k"},
	Usage:   "NewsAPI key",
}

var authCmd = &urfave.Command{
	Name:  "auth",
	Usage: "Manage the NewsAPI key used for coverage cross-checks",
	Subcommands: []*urfave.Command{
		{
			Name:   "set",
			Usage:  "Store the NewsAPI key",
			Flags:  []urfave.Flag{keyFlag},
			Action: runAuthSetCmd,
		},
		{
			Name:   "status",
			Usage:  "Check whether a NewsAPI key is stored",
			Action: runAuthStatusCmd,
		},
		{
			Name:   "delete",
			Usage:  "Remove the stored NewsAPI key",
			Action: runAuthDeleteCmd,
		},
	},
}

func runAuthSetCmd(c *urfave.Context) error {
	app := getConfig(c)

	key := c.String(keyFlag.Name)
	if key == "" && c.Args().Present() {
		key = c.Args().First()
	}
	if key == "" {
		return fmt.Errorf("key is required, use --%s", keyFlag.Name)
	}

	if err := app.Keys.Set(key); err != nil {
		return err
	}
	return encode(map[string]string{"status": "stored"})
}

func runAuthStatusCmd(c *urfave.Context) error {
	app := getConfig(c)

	if _, err := app.Keys.Get(); err != nil {
		return err
	}
	return encode(map[string]string{"status": "configured"})
}

func runAuthDeleteCmd(c *urfave.Context) error {
	app := getConfig(c)

	if err := app.Keys.Delete(); err != nil {
		return err
	}
	return encode(map[string]string{"status": "deleted"})
}
