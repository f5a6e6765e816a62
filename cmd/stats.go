package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var showNodes bool

var statsCmd = &cobra.Command{
	Use:   "stats [document]",
	Short: "Show canonical table counts and resolution statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := run(cmd, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		var rows [][]string
		for _, p := range res.Importer.Stats().Pairs() {
			rows = append(rows, []string{p.Key, strconv.Itoa(p.Value)})
		}
		_, _ = fmt.Fprintln(out, renderTable(out, []string{"statistic", "value"}, rows))

		if showNodes {
			rows = nil
			for _, e := range res.Importer.Nodes() {
				detail, sub := "", ""
				if e.OriginKind() == "generated" {
					detail = string(e.Detail())
					sub = strconv.Itoa(e.SubIndex())
				}
				rows = append(rows, []string{strconv.Itoa(e.Index), string(e.Keyword()), e.OriginKind(), e.SourceID(), sub, detail})
			}
			_, _ = fmt.Fprintln(out, renderTable(out, []string{"index", "keyword", "origin", "source", "sub", "detail"}, rows))
		}
		return checkResult(res)
	},
}

func init() {
	statsCmd.Flags().BoolVar(&showNodes, "nodes", false, "Also print the canonical node table")
	rootCmd.AddCommand(statsCmd)
}
