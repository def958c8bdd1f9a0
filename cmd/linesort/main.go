// Linesort sorts "<number>. <text>" files larger than memory.
//
// Usage:
//
//	linesort generate -o big.txt -n 100000000
//	linesort sort big.txt big_sorted.txt --chunk-size 268435456 --sorters 8
//	linesort verify big_sorted.txt
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tamirms/linesort/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "linesort: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
