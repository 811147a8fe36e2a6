// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [text]",
	Short: "Extract and group medical keywords from text",
	Long: `Keywords runs the extraction passes over the given text (or stdin) and
prints the ranked keywords grouped by dictionary category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := textArg(args)
		if err != nil {
			return err
		}
		if text == "" {
			return errors.New("no text to analyse")
		}
		limit, _ := cmd.Flags().GetInt("max")
		if limit <= 0 {
			limit = cfg.Keywords.MaxKeywords
		}

		ext := newExtractor()
		a := ext.ExtractAndClassify(text, limit)
		mtx.AddKeywords(a.Total)

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, a)
		}
		fmt.Printf("%d keywords\n", a.Total)
		for _, c := range a.CategoriesFound {
			fmt.Printf("\n%s:\n", c)
			for _, k := range a.Classified[c] {
				fmt.Printf("  %-32s %6.2f  %s\n", truncate(k.Keyword, 32), k.Score, strings.Join(k.Methods, ","))
			}
		}
		return nil
	},
}

func init() {
	keywordsCmd.Flags().Int("max", 0, "maximum keywords (default from config)")
	keywordsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(keywordsCmd)
}
