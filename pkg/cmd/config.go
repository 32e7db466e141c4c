package cmd

import (
	"strings"

	"github.com/ignamv/veriloga/pkg/compiler"
	"github.com/spf13/cobra"
)

// compilationConfig builds a compiler.CompilationConfig from the persistent
// --no-stdlib/--include/--define flags shared by every subcommand.
func compilationConfig(cmd *cobra.Command) compiler.CompilationConfig {
	defines := map[string]string{}
	for _, item := range GetStringArray(cmd, "define") {
		name, value, hasValue := strings.Cut(item, "=")
		if !hasValue {
			value = ""
		}
		defines[name] = value
	}
	return compiler.CompilationConfig{
		Stdlib:      !GetFlag(cmd, "no-stdlib"),
		IncludeDirs: GetStringArray(cmd, "include"),
		Defines:     defines,
	}
}
