// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify a piece of text into a medical category",
	Long: `Classify predicts the category of the given text (or stdin). The saved
model is used when present; otherwise the classifier is trained on
bootstrap data first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := textArg(args)
		if err != nil {
			return err
		}
		if text == "" {
			return errors.New("no text to classify")
		}

		cls := newClassifier()
		if !cls.Load() {
			logger.Info().Msg("no saved model, training on bootstrap data")
			if res := cls.Train(nil); !res.Success {
				return fmt.Errorf("training failed: %s", res.Error)
			}
		}
		res, err := cls.Classify(text)
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, res)
		}
		fmt.Printf("%s (%.3f)\n", res.PredictedCategory, res.Confidence)
		for i, p := range res.Top {
			fmt.Printf("  %d. %-20s %.3f\n", i+1, p.Label, p.Probability)
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(classifyCmd)
}
