package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xiaobogaga/oberon/compiler/internal"
)

var (
	configPath string
	out        string
	verbose    bool
	maxErrors  int
	skipCheck  bool
)

var rootCmd = &cobra.Command{
	Use:   "oberonc",
	Short: "oberonc compiles Oberon modules to C",
	Long: `oberonc translates Oberon modules (.Mod) into C99 source files.

Commands:
  build  Compile a module or a directory of modules into <out>/<Module>.c
  check  Report the diagnostics of a module or a directory of modules
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Compile .Mod files into C",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return internal.Compile(cmd.Context(), args[0], conf)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Check .Mod files without generating code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return internal.Check(cmd.Context(), args[0], conf)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "yaml config file")
	flags.StringVarP(&out, "out", "o", "out", "output directory for generated C files")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every compiler stage")
	flags.IntVar(&maxErrors, "max-errors", 1, "stop checking after this many diagnostics")
	flags.BoolVar(&skipCheck, "skip-check", false, "report check errors as warnings and generate anyway")

	rootCmd.AddCommand(buildCmd, checkCmd)
}

// loadConfig reads the config file when given, flags set on the command line win.
func loadConfig(cmd *cobra.Command) (*internal.Config, error) {
	conf := internal.DefaultConfig()
	if configPath != "" {
		var err error
		if conf, err = internal.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("out") {
		conf.Out = out
	}
	if flags.Changed("verbose") {
		conf.Verbose = verbose
	}
	if flags.Changed("max-errors") {
		if maxErrors < 1 {
			return nil, fmt.Errorf("--max-errors must be at least 1, found %d", maxErrors)
		}
		conf.MaxErrors = maxErrors
	}
	if flags.Changed("skip-check") {
		conf.SkipCheck = skipCheck
	}
	return conf, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", strings.ReplaceAll(err.Error(), "\n", "\n  "))
		os.Exit(1)
	}
}
