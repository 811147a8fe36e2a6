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

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored paper with its keywords and categories",
	Long: `Show prints one stored paper. The argument is the database row ID or,
with --external, the source identifier (PMID or arXiv ID).`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Bool("external", false, "treat the argument as a PMID or arXiv ID")
	showCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	var d store.PaperDetail
	if external, _ := cmd.Flags().GetBool("external"); external {
		d, err = st.GetPaperByExternalID(ctx, args[0])
	} else {
		id, perr := strconv.ParseInt(args[0], 10, 64)
		if perr != nil {
			return fmt.Errorf("invalid paper id %q (use --external for source ids)", args[0])
		}
		d, err = st.GetPaper(ctx, id)
	}
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(os.Stdout, d)
	}

	fmt.Println(d.Title)
	fmt.Printf("  %s %s  %s (%s)\n", d.Source, d.ExternalID, d.Journal, d.PublicationDate)
	if len(d.Authors) > 0 {
		fmt.Printf("  authors: %s\n", strings.Join(d.Authors, ", "))
	}
	if d.DOI != "" {
		fmt.Printf("  doi: %s\n", d.DOI)
	}
	fmt.Printf("  url: %s\n", d.URL)
	for _, c := range d.Categories {
		marker := " "
		if c.IsPrimary {
			marker = "*"
		}
		fmt.Printf("  %s %-20s %.3f\n", marker, c.Name, c.Confidence)
	}
	if len(d.ExtractedKeywords) > 0 {
		fmt.Println("  keywords:")
		for _, k := range d.ExtractedKeywords {
			fmt.Printf("    %-30s %-16s %.2f  %s\n", truncate(k.Keyword, 30), k.Category, k.Score, strings.Join(k.Methods, ","))
		}
	}
	if d.Abstract != "" {
		fmt.Printf("\n%s\n", d.Abstract)
	}
	return nil
}
