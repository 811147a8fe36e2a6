// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"cmp"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Statistics(ctx)
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, stats)
		}

		fmt.Printf("papers:          %d\n", stats.TotalPapers)
		fmt.Printf("keywords:        %d\n", stats.TotalKeywords)
		fmt.Printf("last 7 days:     %d\n", stats.RecentPapers)
		printDistribution("sources", stats.SourceDistribution)
		printDistribution("categories", stats.CategoryDistribution)
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func printDistribution(title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(m[b], m[a]), cmp.Compare(a, b))
	})
	fmt.Printf("\n%s:\n", title)
	for _, n := range names {
		fmt.Printf("  %-24s %d\n", n, m[n])
	}
}
