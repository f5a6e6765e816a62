package cmd

import (
	"fmt"

	"github.com/agentic-research/rigseq/internal/ingest"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [document] [output.db]",
	Short: "Write the canonical node table and messages to a SQLite database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := run(cmd, args[0])
		if err != nil {
			return err
		}
		if err := checkResult(res); err != nil {
			return err
		}
		if err := ingest.ExportSQLite(args[1], res.Importer); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d nodes and %d messages to %s\n",
			res.Importer.NumNodes(), len(res.Importer.Messages()), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
