package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"

	"github.com/newscope/nctl/pkg/data"
)

var (
	limitFlag = &urfave.IntFlag{
		Name:    "limit",
		Aliases: []string{"l"},
		Usage:   "Max number of records to return",
		Value:   50,
	}

	recordIDFlag = &urfave.StringFlag{
		Name:  "id",
		Usage: "Analysis record ID",
	}
)

var historyCmd = &urfave.Command{
	Name:  "history",
	Usage: "Browse recorded analysis results",
	Subcommands: []*urfave.Command{
		{
			Name:   "list",
			Usage:  "List recent analysis records, newest first",
			Flags:  []urfave.Flag{limitFlag},
			Action: runHistoryListCmd,
		},
		{
			Name:   "get",
			Usage:  "Show one analysis record by ID",
			Flags:  []urfave.Flag{recordIDFlag},
			Action: runHistoryGetCmd,
		},
		{
			Name:   "verdicts",
			Usage:  "Show the verdict distribution over recorded analyses",
			Action: runHistoryVerdictsCmd,
		},
	},
}

func runHistoryListCmd(c *urfave.Context) error {
	app := getConfig(c)

	list, err := data.ListAnalyses(c.Context, app.DB, c.Int(limitFlag.Name))
	if err != nil {
		return err
	}
	return encode(list)
}

func runHistoryGetCmd(c *urfave.Context) error {
	app := getConfig(c)

	id := c.String(recordIDFlag.Name)
	if id == "" && c.Args().Present() {
		id = c.Args().First()
	}
	if id == "" {
		return fmt.Errorf("record ID is required, use --%s", recordIDFlag.Name)
	}

	rec, err := data.GetAnalysis(c.Context, app.DB, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no analysis record with ID: %s", id)
	}
	return encode(rec)
}

func runHistoryVerdictsCmd(c *urfave.Context) error {
	app := getConfig(c)

	dist, err := data.VerdictDistribution(c.Context, app.DB)
	if err != nil {
		return err
	}
	return encode(dist)
}
