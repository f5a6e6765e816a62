package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentic-research/rigseq/internal/ingest"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var queryTarget string

var queryCmd = &cobra.Command{
	Use:   "query [document|export.db] [jsonpath]",
	Short: "Run a JSONPath query over the canonical table or the resolved document",
	Long: `Run a JSONPath query over the canonical node table (--target table) or the
resolved document (--target document). A .db file produced by "export" can be
queried in place of a document with the table target.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := queryRoot(cmd, args[0])
		if err != nil {
			return err
		}

		matches, err := ingest.NewJSONWalker().Query(root, args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range matches {
			_, _ = fmt.Fprintln(out, oj.JSON(m.Context(), &oj.Options{Sort: true}))
		}
		return nil
	},
}

func queryRoot(cmd *cobra.Command, path string) (any, error) {
	isDB := strings.EqualFold(filepath.Ext(path), ".db")
	switch queryTarget {
	case "table":
		if isDB {
			return ingest.LoadNodeRecords(path)
		}
		res, err := run(cmd, path)
		if err != nil {
			return nil, err
		}
		return ingest.TableRecords(res.Importer.Nodes()), nil
	case "document":
		if isDB {
			return nil, fmt.Errorf("%s: an export holds no document, use --target table", path)
		}
		res, err := run(cmd, path)
		if err != nil {
			return nil, err
		}
		return ingest.DocumentRecords(res.Document)
	}
	return nil, fmt.Errorf("unknown query target %q (want table or document)", queryTarget)
}

func init() {
	queryCmd.Flags().StringVarP(&queryTarget, "target", "t", "table", "Query target: table or document")
	rootCmd.AddCommand(queryCmd)
}
