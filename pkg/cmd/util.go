// Package cmd implements the vacompile command-line surface: a root
// command plus compile/run/repl subcommands. Styled after the teacher's
// pkg/cmd/root.go and pkg/cmd/util.go (cobra root command, GetFlag/GetString
// helpers that fail fast on a malformed flag rather than threading an error
// through every caller).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// GetFlag reads a bool flag, exiting the process if it was not registered.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// GetString reads a string flag, exiting the process if it was not registered.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// GetStringArray reads a repeated string flag, exiting the process if it
// was not registered.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}
