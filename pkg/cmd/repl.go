package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/ignamv/veriloga/pkg/compiler"
	"github.com/ignamv/veriloga/pkg/hir"
	"github.com/ignamv/veriloga/pkg/ir"
	"github.com/ignamv/veriloga/pkg/module"
	"github.com/ignamv/veriloga/pkg/source"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	replGreen  = color.New(color.FgGreen).SprintFunc()
	replRed    = color.New(color.FgRed).SprintFunc()
	replDim    = color.New(color.Faint).SprintFunc()
	replBold   = color.New(color.Bold).SprintFunc()
)

// repl holds the interactive session's compiled module: nil until :load
// succeeds, so commands that touch state fail with a clear message instead
// of a nil dereference.
type repl struct {
	cfg compiler.CompilationConfig
	m   *module.CompiledModule
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "interactively load, drive, and inspect a compiled module.",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
		r := &repl{cfg: compilationConfig(cmd)}
		r.start(os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func (r *repl) start(in io.Reader, out io.Writer) {
	fmt.Fprintf(out, "%s\n", replBold("vacompile repl"))
	fmt.Fprintln(out, replDim("Type :help for commands, :quit to exit"))

	// liner needs a real terminal for its raw-mode line editing; piped
	// input (a script, or a non-interactive test) falls back to plain
	// line-at-a-time reading instead of failing outright.
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.runLiner(out)
		return
	}
	r.runPlain(in, out)
}

func (r *repl) runLiner(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("va> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Fprintln(out, replGreen("goodbye"))
			return
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", replRed("error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == ":quit" || input == ":q" {
			fmt.Fprintln(out, replGreen("goodbye"))
			return
		}
		r.dispatch(input, out)
	}
}

func (r *repl) runPlain(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "va> ")
		if !scanner.Scan() {
			fmt.Fprintln(out, replGreen("goodbye"))
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == ":quit" || input == ":q" {
			fmt.Fprintln(out, replGreen("goodbye"))
			return
		}
		r.dispatch(input, out)
	}
}

func (r *repl) dispatch(input string, out io.Writer) {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case ":help":
		fmt.Fprintln(out, `:load <file>                 compile a source file
:run                         execute the analog block once
:set param <name> <value>    set a parameter
:set net <name> <value>      set a net's potential
:set flow <n1> <n2> <value>  set a branch's flow input
:show                        print current module state
:quit                        exit`)
	case ":load":
		if len(args) != 1 {
			fmt.Fprintln(out, replRed("usage: :load <file>"))
			return
		}
		r.load(args[0], out)
	case ":run":
		if !r.require(out) {
			return
		}
		if err := r.m.RunAnalog(); err != nil {
			fmt.Fprintf(out, "%s: %v\n", replRed("error"), err)
			return
		}
		fmt.Fprintln(out, replGreen("ok"))
	case ":set":
		if !r.require(out) {
			return
		}
		r.set(args, out)
	case ":show":
		if !r.require(out) {
			return
		}
		r.show(out)
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", replRed("error"), cmd)
	}
}

func (r *repl) require(out io.Writer) bool {
	if r.m == nil {
		fmt.Fprintln(out, replRed("no module loaded; try :load <file>"))
		return false
	}
	return true
}

func (r *repl) load(path string, out io.Writer) {
	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", replRed("error"), err)
		return
	}
	mods, synErr := compiler.CompileSourceFile(path, string(text), r.cfg, source.ReadFile)
	if synErr != nil {
		fmt.Fprintln(out, replRed(synErr.Error()))
		return
	}
	if len(mods) != 1 {
		fmt.Fprintf(out, "%s: expected exactly one module, found %d\n", replRed("error"), len(mods))
		return
	}
	r.m = mods[0]
	fmt.Fprintf(out, "%s module %s\n", replGreen("loaded"), r.m.HIR.Name)
}

func (r *repl) set(args []string, out io.Writer) {
	if len(args) < 3 {
		fmt.Fprintln(out, replRed("usage: :set {param|net} <name> <value>  or  :set flow <n1> <n2> <value>"))
		return
	}
	var err error
	switch args[0] {
	case "param":
		v, perr := strconv.ParseFloat(args[2], 64)
		if perr != nil {
			err = perr
			break
		}
		err = r.m.SetParameter(args[1], ir.Value{Kind: hir.Real, F: v})
	case "net":
		v, perr := strconv.ParseFloat(args[2], 64)
		if perr != nil {
			err = perr
			break
		}
		err = r.m.SetNetPotential(args[1], v)
	case "flow":
		if len(args) != 4 {
			err = fmt.Errorf("usage: :set flow <n1> <n2> <value>")
			break
		}
		v, perr := strconv.ParseFloat(args[3], 64)
		if perr != nil {
			err = perr
			break
		}
		err = r.m.SetBranchFlow(args[1], args[2], v)
	default:
		err = fmt.Errorf("unknown :set target %q", args[0])
	}
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", replRed("error"), err)
		return
	}
	fmt.Fprintln(out, replGreen("ok"))
}

func (r *repl) show(out io.Writer) {
	for _, n := range r.m.HIR.Nets {
		pot, _ := r.m.NetPotential(n.Name)
		flow, _ := r.m.NetFlow(n.Name)
		fmt.Fprintf(out, "net %s: potential=%g flow=%g\n", n.Name, pot, flow)
	}
	for _, b := range r.m.Branches() {
		pot, _ := r.m.BranchPotential(b.Net1, b.Net2)
		fmt.Fprintf(out, "branch (%s,%s): potential=%g\n", b.Net1, b.Net2, pot)
	}
	for _, v := range r.m.HIR.Variables {
		val, verr := r.m.Variable(v.Name)
		if verr != nil {
			continue
		}
		fmt.Fprintf(out, "variable %s: %s\n", v.Name, formatValue(val))
	}
}
