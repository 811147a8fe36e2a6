// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/medlit/internal/classifier"
	"github.com/pdiddy/medlit/internal/store"
	"github.com/pdiddy/medlit/pkg/types"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the paper classifier",
	Long: `Train fits the classifier and saves it to the model directory. By default
it trains on bootstrap data generated from the category keyword lists.
With --from-db it labels stored papers by keyword matching and falls back
to bootstrap data when too few papers can be labelled.`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().Bool("from-db", false, "train on papers stored in the database")
	trainCmd.Flags().Int("limit", 1000, "maximum number of stored papers to train on")
	trainCmd.Flags().Bool("json", false, "output the training result as JSON")

	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	var papers []types.Paper
	if fromDB, _ := cmd.Flags().GetBool("from-db"); fromDB {
		limit, _ := cmd.Flags().GetInt("limit")
		loaded, err := storedPapers(cmd, limit)
		if err != nil {
			return err
		}
		papers = loaded
		logger.Info().Int("papers", len(papers)).Msg("loaded training papers")
	}

	cls := newClassifier()
	res := trainWithFallback(cls, papers, logger)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(os.Stdout, struct {
			Result any `json:"result"`
			Model  any `json:"model"`
		}{res, cls.Info()})
	}

	fmt.Println(res)
	if !res.Success {
		return fmt.Errorf("training failed: %s", res.Error)
	}
	if ev := res.Evaluation; ev != nil {
		fmt.Printf("accuracy: %.3f on %d held-out samples\n", ev.Accuracy, ev.TestSamples)
	}
	info := cls.Info()
	fmt.Printf("classes: %v\nvocabulary: %d terms\nsaved to %s\n", info.Classes, info.VocabularySize, info.ModelPath)
	return nil
}

// trainWithFallback trains on papers and retries on bootstrap data when
// the papers yield no usable training set.
func trainWithFallback(cls *classifier.Classifier, papers []types.Paper, log zerolog.Logger) classifier.TrainResult {
	res := cls.Train(papers)
	if res.Success || len(papers) == 0 {
		return res
	}
	log.Warn().Str("error", res.Error).Int("papers", len(papers)).
		Msg("stored papers could not be labelled, training on bootstrap data")
	return cls.Train(nil)
}

// storedPapers loads up to limit stored papers with their source keywords.
func storedPapers(cmd *cobra.Command, limit int) ([]types.Paper, error) {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	records, err := st.Search(ctx, store.SearchOptions{Limit: limit})
	if err != nil {
		return nil, err
	}
	papers := make([]types.Paper, 0, len(records))
	for _, r := range records {
		d, err := st.GetPaper(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		papers = append(papers, types.Paper{
			ID:              d.ExternalID,
			Title:           d.Title,
			Abstract:        d.Abstract,
			Authors:         d.Authors,
			Journal:         d.Journal,
			PublicationDate: d.PublicationDate,
			DOI:             d.DOI,
			URL:             d.URL,
			Source:          d.Source,
			Keywords:        d.OriginalKeywords,
			Categories:      d.SubjectCategories,
		})
	}
	return papers, nil
}
