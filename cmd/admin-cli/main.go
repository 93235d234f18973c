package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/noah-isme/teamsp-admin-api/pkg/config"
)

const usage = `usage: admin-cli <command> [flags]

commands:
  migrate     create or update the database schema
  add-user    create a login account
  subjects    print subjects with their coordinators
  token       mint an access token for an existing user
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		color.Red("failed to load config: %v", err)
		os.Exit(1)
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		color.Red("unknown command %q", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := cmd(context.Background(), cfg, os.Args[2:], os.Stdout); err != nil {
		color.Red("%s: %v", os.Args[1], err)
		os.Exit(1)
	}
}
