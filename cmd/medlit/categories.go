// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the medical categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cats, err := st.Categories(ctx)
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, cats)
		}
		for _, c := range cats {
			fmt.Printf("%-3d %-20s %-10s %s\n", c.ID, c.Name, c.DisplayName, c.Description)
		}
		return nil
	},
}

func init() {
	categoriesCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(categoriesCmd)
}
