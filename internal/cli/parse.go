package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	var scorePath string
	var asJSON bool

	c := &cobra.Command{
		Use:   "parse",
		Short: "Check a score file and print its bars of durations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			score, err := loadScore(scorePath)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(score)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, score.String())
			fmt.Fprintf(out, "%d bars, %d beats, %s\n", len(score.Bars), score.NumBeats(), humanLength(score.TotalDuration()))
			return nil
		},
	}

	c.Flags().StringVarP(&scorePath, "path", "p", "", "Score file (required)")
	c.Flags().BoolVar(&asJSON, "json", false, "Print the score as JSON")

	_ = c.MarkFlagRequired("path")
	return c
}
