package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/malbeclabs/anchor-go/avm/internal/avm"
)

// envDebug enables launcher debug logs on stderr.
const envDebug = "AVM_DEBUG"

func main() {
	logLevel := slog.LevelWarn
	if os.Getenv(envDebug) != "" {
		logLevel = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: logLevel}))

	home, err := avm.Home()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	code, err := avm.Launch(context.Background(), log, home, os.Args[1:], avm.IO{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if remedy := avm.Remedy(err); remedy != "" {
			fmt.Fprintln(os.Stderr, remedy)
		}
		os.Exit(1)
	}
	os.Exit(code)
}
