// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Check that every literature source answers a probe query",
	RunE: func(cmd *cobra.Command, args []string) error {
		crawler := newCrawler()
		status := crawler.TestSources(cmd.Context())

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, status)
		}
		var failed int
		for _, name := range crawler.Sources() {
			state := "ok"
			if !status[name] {
				state = "FAILED"
				failed++
			}
			fmt.Printf("%-10s %s\n", name, state)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d sources unavailable", failed, len(status))
		}
		return nil
	},
}

func init() {
	sourcesCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(sourcesCmd)
}
