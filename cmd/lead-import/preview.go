package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"telemarketing_backend/internal/imports/ingest"

	"github.com/spf13/cobra"
)

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var (
		full   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Print the leads a spreadsheet would import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := root.parseFile(args[0])
			if err != nil {
				return err
			}
			leads := result.Preview()
			if full {
				leads = result.Leads
			}
			if asJSON {
				return writePreviewJSON(cmd.OutOrStdout(), filepath.Base(args[0]), result, leads)
			}
			return writePreviewTable(cmd.OutOrStdout(), filepath.Base(args[0]), result, leads)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Print every lead instead of the first 10")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

type previewOutput struct {
	FileName   string                 `json:"fileName"`
	Strategy   string                 `json:"strategy"`
	DataStart  int                    `json:"dataStart"`
	RowsRead   int                    `json:"rowsRead"`
	TotalCount int                    `json:"totalCount"`
	Leads      []ingest.CanonicalLead `json:"leads"`
}

func writePreviewJSON(w io.Writer, fileName string, result *ingest.Result, leads []ingest.CanonicalLead) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(previewOutput{
		FileName:   fileName,
		Strategy:   result.Strategy,
		DataStart:  result.DataStart,
		RowsRead:   result.RowsRead,
		TotalCount: len(result.Leads),
		Leads:      leads,
	})
}

func writePreviewTable(w io.Writer, fileName string, result *ingest.Result, leads []ingest.CanonicalLead) error {
	fmt.Fprintf(w, "%s: %d leads (strategy %s, data starts at row %d)\n\n",
		fileName, len(result.Leads), result.Strategy, result.DataStart)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOMPANY\tDEPARTMENT\tPOSITION\tCONTACT\tPHONE\tEMAIL\tADDRESS\tNOTES")
	for i, lead := range leads {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", i+1,
			lead.CompanyName, lead.Department, lead.Position, lead.ContactName,
			lead.Phone, lead.Email, lead.Address, lead.Notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if hidden := len(result.Leads) - len(leads); hidden > 0 {
		fmt.Fprintf(w, "\n... %d more (use --full)\n", hidden)
	}
	return nil
}
