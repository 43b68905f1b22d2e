// Package cmd implements the zhihu-publisher CLI using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "zhihu-publisher",
	Short: "Publish Markdown answers to Zhihu",
	Long: `zhihu-publisher renders a Markdown answer the way Zhihu expects it
(code fences, math, footnotes), submits it to a question or an existing answer,
and shows the page Zhihu renders for it.

Usage:
  zhihu-publisher publish answer.md
  zhihu-publisher preview answer.md
  zhihu-publisher serve
  zhihu-publisher draft --question "..."`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config/config.json", "path to config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logs")
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
