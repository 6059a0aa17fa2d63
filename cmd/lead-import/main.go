// Command lead-import parses lead spreadsheets from the command line and
// optionally writes them to the database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"telemarketing_backend/internal/imports/ingest"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	aliasesFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:           "lead-import",
		Short:         "Preview and import lead spreadsheets (.xlsx, .xls, .csv)",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.aliasesFile, "aliases", "", "YAML file with extra header aliases")

	root.AddCommand(newPreviewCmd(&opts), newCommitCmd(&opts))
	return root
}

func (o *rootOptions) engine() (*ingest.Engine, error) {
	if o.aliasesFile == "" {
		return ingest.NewEngine(nil), nil
	}
	aliases, err := ingest.LoadAliasFile(o.aliasesFile)
	if err != nil {
		return nil, err
	}
	return ingest.NewEngine(aliases), nil
}

// parseFile reads and parses path with the configured engine.
func (o *rootOptions) parseFile(path string) (*ingest.Result, error) {
	engine, err := o.engine()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return engine.Parse(data, path)
}
