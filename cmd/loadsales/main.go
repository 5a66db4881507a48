// cmd/loadsales/main.go
//
// Counts the rows of a public sales CSV export for one state. With -db the
// rows are also written to the public_sales table.
//
// Usage: loadsales [-db <postgres dsn>] <csvFile> <STATE_CODE>

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/AVVKavvk/oakmont-voip-crm/persist"
	"github.com/AVVKavvk/oakmont-voip-crm/sales"
)

const usage = "Usage: loadsales [-db <dsn>] <csvFile> <STATE_CODE>"

// openSink is replaced in tests.
var openSink = func(dsn string) (sales.Sink, error) {
	db, err := persist.Open(dsn)
	if err != nil {
		return nil, err
	}
	return persist.NewSaleRepository(db), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("loadsales", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("db", "", "Postgres DSN; rows are persisted when set")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	filePath, state := fs.Arg(0), fs.Arg(1)
	if filePath == "" || state == "" {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	var sink sales.Sink = sales.Discard{}
	if *dsn != "" {
		s, err := openSink(*dsn)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening database: %v\n", err)
			return 1
		}
		sink = s
	}

	f, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error processing CSV: %v\n", err)
		return 1
	}
	defer f.Close()

	rows, err := sales.Load(ctx, f, state, sink)
	if err != nil {
		fmt.Fprintf(stderr, "Error processing CSV: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, sales.Summary(rows, state))
	return 0
}
