// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session <id>",
	Short: "Show a recorded crawl session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := st.Session(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, s)
		}

		fmt.Printf("session %s: %s\n", s.ID, s.Status)
		fmt.Printf("  keywords: %s\n", strings.Join(s.Keywords, ", "))
		fmt.Printf("  sources:  %s\n", strings.Join(s.Sources, ", "))
		fmt.Printf("  started:  %s\n", s.StartedAt.Format("2006-01-02 15:04:05"))
		if !s.CompletedAt.IsZero() {
			fmt.Printf("  finished: %s (%s)\n", s.CompletedAt.Format("2006-01-02 15:04:05"), s.Duration)
		}
		fmt.Printf("  papers:   %d found, %d saved, %d skipped, %d failed\n",
			s.TotalPapers, s.SavedPapers, s.SkippedPapers, s.FailedPapers)
		if s.ErrorMessage != "" {
			fmt.Printf("  error:    %s\n", s.ErrorMessage)
		}
		return nil
	},
}

func init() {
	sessionCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(sessionCmd)
}
