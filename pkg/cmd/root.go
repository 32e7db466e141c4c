// Package cmd implements the vacompile command-line surface: a root
// command plus compile/run/repl subcommands. Styled after the teacher's
// pkg/cmd/root.go and pkg/cmd/util.go (cobra root command, GetFlag/GetString
// helpers that fail fast on a malformed flag rather than threading an error
// through every caller).
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

var rootCmd = &cobra.Command{
	Use:   "vacompile",
	Short: "A compiler for a subset of Verilog-A.",
	Long:  "A compiler (and small execution harness) for a subset of Verilog-A analog blocks.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("vacompile ")
			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
			return
		}
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("no-stdlib", false, "do not prepend the builtin Voltage/Current/electrical preamble")
	rootCmd.PersistentFlags().StringArrayP("include", "I", []string{}, "add a directory to the `include search path")
	rootCmd.PersistentFlags().StringArrayP("define", "D", []string{}, "define a `ifdef-visible name, optionally name=value")
}

func setupLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}
