package main

import "github.com/ignamv/veriloga/pkg/cmd"

func main() {
	cmd.Execute()
}
