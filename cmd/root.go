package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/rigseq/internal/config"
	"github.com/agentic-research/rigseq/internal/ingest"
	"github.com/agentic-research/rigseq/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbosity  int
	legacy     bool
	strict     bool
	dumpNodes  bool

	// cfg is loaded once per invocation by the root pre-run hook.
	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().BoolVar(&legacy, "legacy", true, "Remap legacy node references to canonical indices")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Fail when the pass recorded errors")
	rootCmd.PersistentFlags().BoolVar(&dumpNodes, "dump-nodes", false, "Log every canonical table entry at debug level")
}

var rootCmd = &cobra.Command{
	Use:           "rigseq",
	Short:         "rigseq: sequential node-index resolver for rig definitions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]any{}
		flags := cmd.Flags()
		if flags.Changed("legacy") {
			overrides["legacy.enabled"] = legacy
		}
		if flags.Changed("strict") {
			overrides["output.strict"] = strict
		}
		if flags.Changed("dump-nodes") {
			overrides["log.dump_nodes"] = dumpNodes
		}
		if flags.Changed("format") {
			overrides["output.format"] = outputFormat
		}

		loaded, err := config.Load(configPath, overrides)
		if err != nil {
			return err
		}

		level := loaded.Log.Verbosity
		if verbosity > level {
			level = verbosity
		}
		logging.SetupLogger(level, cmd.ErrOrStderr())

		cfg = loaded
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run loads and resolves one document with the active configuration.
func run(cmd *cobra.Command, path string) (*ingest.Result, error) {
	e := ingest.NewEngine(ingest.NewOSLoader(), cfg)
	res, err := e.Run(path)
	if err != nil {
		return nil, err
	}
	printMessages(cmd.ErrOrStderr(), res.Importer.Messages())
	return res, nil
}

// checkResult applies the failure policy: fatal messages always fail, errors
// fail only in strict mode.
func checkResult(res *ingest.Result) error {
	if n := res.Importer.NumFatal(); n > 0 {
		return fmt.Errorf("%s: %d fatal inconsistencies, output refused", res.Document.Name, n)
	}
	if cfg.Output.Strict && !res.OK() {
		return fmt.Errorf("%s: %d errors recorded (strict mode)", res.Document.Name, res.Importer.NumErrors())
	}
	return nil
}
