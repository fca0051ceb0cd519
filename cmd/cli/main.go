package main

import (
	"github.com/newscope/nctl/pkg/cli"
)

// set at build time via ldflags
var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

func main() {
	cli.SetVersion(version, commit, date)
	cli.Execute()
}
