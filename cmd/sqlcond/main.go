// Command sqlcond compiles declarative filter conditions to SQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/syssam/sqlcond/internal/cli"
)

// Version information (set by build)
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cli.Version = Version
	code := cli.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
