package cmd

import (
	"fmt"

	"github.com/agentic-research/rigseq/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	outputPath   string
	outputFormat string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [document]",
	Short: "Resolve legacy node references to canonical indices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := run(cmd, args[0])
		if err != nil {
			return err
		}
		if err := checkResult(res); err != nil {
			return err
		}

		format, err := ingest.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}

		if outputPath == "" {
			data, err := ingest.Encode(res.Document, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		// an explicit --format wins over the output extension
		if !cmd.Flags().Changed("format") && ingest.FormatFromPath(outputPath) != ingest.FormatUnknown {
			format = ingest.FormatUnknown
		}
		if err := ingest.NewOSLoader().Save(outputPath, res.Document, format); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d nodes, %d errors, %d warnings)\n",
			outputPath, res.Importer.NumNodes(), res.Importer.NumErrors(), res.Importer.NumWarnings())
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the resolved document here instead of stdout")
	resolveCmd.Flags().StringVar(&outputFormat, "format", "json", "Output format: json or yaml")
	rootCmd.AddCommand(resolveCmd)
}
