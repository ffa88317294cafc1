package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/fars/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override fars config path (optional)")
	pollSeconds := flag.Int("poll", 0, "refresh interval in seconds (optional, defaults to 30s)")
	days := flag.Int("days", 0, "booking window in days from today; negative looks back (optional)")
	dump := flag.Bool("dump", false, "print the booking window as JSON and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, Dump: *dump, Out: os.Stdout}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "days" {
			opts.Days = days
		}
	})

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "fars: %v\n", err)
		return 1
	}
	return 0
}
