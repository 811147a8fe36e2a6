// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medlit/internal/export"
	"github.com/pdiddy/medlit/internal/store"
)

const exportLimit = 100000

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored papers to CSV, Excel, JSON, YAML, PDF or an HTML report",
	Long: `Export writes stored papers matching the filters to the export directory
and records the export in the database. Without --output the file is named
papers_export_YYYYMMDD_HHMMSS.<ext> (summary_report_... for the HTML report).`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", export.FormatCSV, "export format: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().String("output", "", "output file name inside the export directory")
	exportCmd.Flags().String("query", "", "filter by title/abstract text")
	exportCmd.Flags().String("category", "", "filter by category name")
	exportCmd.Flags().String("source", "", "filter by source")
	exportCmd.Flags().Int("limit", exportLimit, "maximum number of papers")
	exportCmd.Flags().Bool("history", false, "list recent exports instead of exporting")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if history, _ := cmd.Flags().GetBool("history"); history {
		recs, err := st.Exports(ctx, 20)
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Printf("%s  %-7s %5d papers %9d bytes  %s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Format, r.PaperCount, r.FileSize, r.Path)
		}
		return nil
	}

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	var opts store.SearchOptions
	opts.Query, _ = cmd.Flags().GetString("query")
	opts.Category, _ = cmd.Flags().GetString("category")
	opts.Source, _ = cmd.Flags().GetString("source")
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	papers, err := st.Search(ctx, opts)
	if err != nil {
		return err
	}

	path, err := export.New(cfg.Export.Dir, logger).Export(format, papers, output)
	if err != nil {
		return err
	}

	filters := map[string]string{}
	for k, v := range map[string]string{"query": opts.Query, "category": opts.Category, "source": opts.Source} {
		if v != "" {
			filters[k] = v
		}
	}
	if _, err := st.RecordExport(ctx, store.ExportRecord{
		Format:     format,
		Path:       path,
		PaperCount: len(papers),
		Filters:    filters,
	}); err != nil {
		logger.Warn().Err(err).Msg("recording export failed")
	}

	fmt.Printf("exported %d papers to %s\n", len(papers), path)
	return nil
}
