package cli

import (
	urfave "github.com/urfave/cli/v2"
)

var versionCmd = &urfave.Command{
	Name:   "version",
	Usage:  "Print the version, commit, and build date",
	Action: runVersionCmd,
}

func runVersionCmd(c *urfave.Context) error {
	return encode(map[string]string{
		"version": version,
		"commit":  commit,
		"date":    date,
	})
}
