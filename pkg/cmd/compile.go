package cmd

import (
	"fmt"
	"os"

	"github.com/ignamv/veriloga/pkg/compiler"
	"github.com/ignamv/veriloga/pkg/source"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile source_file",
	Short: "compile a Verilog-A source file and report any diagnostics.",
	Long: `Lex, preprocess, parse and lower the given source file, then print
one line per module it declares. Exits non-zero on any compilation error.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
		path := args[0]
		text, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(1)
		}
		log.WithField("file", path).Debug("compiling")
		mods, synErr := compiler.CompileSourceFile(path, string(text), compilationConfig(cmd), source.ReadFile)
		if synErr != nil {
			fmt.Fprintln(os.Stderr, synErr.Error())
			os.Exit(1)
		}
		for _, m := range mods {
			fmt.Printf("module %s: %d variable(s), %d parameter(s), %d net(s), %d branch(es)\n",
				m.HIR.Name, len(m.HIR.Variables), len(m.HIR.Parameters), len(m.HIR.Nets), len(m.Branches()))
		}
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
}
