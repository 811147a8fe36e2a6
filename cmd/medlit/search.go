// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medlit/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored papers",
	Long: `Search matches the query against stored titles and abstracts and filters
by category and source. Results are listed newest first. Searches with a
query are recorded in the search history; --history lists it.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("category", "", "filter by category name (e.g. oncology)")
	searchCmd.Flags().String("source", "", "filter by source: pubmed, arxiv")
	searchCmd.Flags().Int("limit", 20, "maximum number of results")
	searchCmd.Flags().Int("offset", 0, "skip this many results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("history", false, "list recent searches instead of searching")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")

	if history, _ := cmd.Flags().GetBool("history"); history {
		entries, err := st.SearchHistory(ctx, limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(os.Stdout, entries)
		}
		for _, e := range entries {
			fmt.Printf("%s  %-40s  %d results\n", e.CreatedAt.Format("2006-01-02 15:04"), truncate(e.Query, 40), e.ResultsCount)
		}
		return nil
	}

	opts := store.SearchOptions{Query: strings.Join(args, " "), Limit: limit}
	opts.Category, _ = cmd.Flags().GetString("category")
	opts.Source, _ = cmd.Flags().GetString("source")
	opts.Offset, _ = cmd.Flags().GetInt("offset")

	papers, err := st.Search(ctx, opts)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(os.Stdout, papers)
	}
	printPapers(papers)
	return nil
}

func printPapers(papers []store.PaperRecord) {
	if len(papers) == 0 {
		fmt.Println("No papers found.")
		return
	}
	fmt.Printf("%-6s  %-8s  %-60s  %-18s  %s\n", "ID", "Source", "Title", "Category", "Date")
	fmt.Println(strings.Repeat("-", 110))
	for _, p := range papers {
		category := p.PredictedCategory
		if category != "" {
			category += " " + strconv.FormatFloat(p.Confidence, 'f', 2, 64)
		}
		fmt.Printf("%-6d  %-8s  %-60s  %-18s  %s\n", p.ID, p.Source, truncate(p.Title, 60), category, p.PublicationDate)
	}
	fmt.Printf("\n%d papers\n", len(papers))
}
