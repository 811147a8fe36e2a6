// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medlit/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <source> <id>",
	Short: "Fetch one paper directly from a source",
	Long: `Fetch retrieves a single record by PMID (pubmed) or arXiv ID (arxiv)
and prints its extracted keywords and predicted category. With --save the
enriched paper is stored.`,
	Args: cobra.ExactArgs(2),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Bool("save", false, "store the enriched paper")
	fetchCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	crawler := newCrawler()
	src, ok := crawler.Source(args[0])
	if !ok {
		return fmt.Errorf("unknown or disabled source %q (enabled: %s)", args[0], strings.Join(crawler.Sources(), ", "))
	}
	paper, err := src.GetDetails(ctx, args[1])
	if err != nil {
		return err
	}

	cls := newClassifier()
	enriched := newExtractor().EnrichPapers([]types.Paper{paper}, cfg.Keywords.MaxKeywords)
	if cls.Load() {
		enriched = cls.ClassifyPapers(enriched)
	} else {
		logger.Warn().Msg("no saved model; run medlit train to classify fetched papers")
	}
	e := enriched[0]

	if save, _ := cmd.Flags().GetBool("save"); save {
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		id, created, err := st.SavePaper(ctx, e)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(os.Stderr, "saved as %d\n", id)
		} else {
			fmt.Fprintf(os.Stderr, "already stored as %d\n", id)
		}
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(os.Stdout, e)
	}
	fmt.Println(e.Title)
	fmt.Printf("  %s %s  %s (%s)\n", e.Source, e.ID, e.Journal, e.PublicationDate)
	if c := e.PredictedCategory(); c != "" {
		fmt.Printf("  category: %s (%.3f)\n", c, e.Confidence())
	}
	for _, k := range e.ExtractedKeywords {
		fmt.Printf("    %-30s %-16s %.2f\n", truncate(k.Keyword, 30), k.Category, k.Score)
	}
	return nil
}
