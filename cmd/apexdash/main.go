// Package main provides the apexdash binary entry point.
// Apexdash is the backend for an Apex Legends data dashboard: it ingests
// the game's wiki into a vector index and answers chat questions grounded
// in the retrieved content.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "apexdash"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:     appName,
		Short:   "Apex Legends dashboard backend",
		Long:    "Apexdash ingests the Apex Legends wiki into a vector index and serves a retrieval-augmented chat API.",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(ingestCmd(&configPath))
	cmd.AddCommand(serveCmd(&configPath))

	return cmd
}
