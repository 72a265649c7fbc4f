package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	screenJobID  string
	screenAppIDs []string
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run AI screening for a job's applications and print the report",
	Long:  "Screens the given applications of a job, or every application without a screening result when --app is omitted, and attaches the model's verdicts.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.screening.ScreenJob(ctx, screenJobID, screenAppIDs)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, report)
	},
}

func init() {
	screenCmd.Flags().StringVar(&screenJobID, "job", "", "job id to screen (required)")
	screenCmd.Flags().StringSliceVar(&screenAppIDs, "app", nil, "application ids to screen (repeatable)")
	_ = screenCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(screenCmd)
}
