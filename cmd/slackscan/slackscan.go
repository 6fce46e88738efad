package main

import (
	"os"

	"github.com/amadigan/slackscan/cli/slackscan"
	"github.com/amadigan/slackscan/internal/applog"
)

var log = applog.New("slackscan")

func main() {
	cmd := slackscan.NewRootCommand(&slackscan.Cli{})

	cmd.SetIn(os.Stdin)
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	if err := cmd.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
