package main

import "github.com/agentic-research/rigseq/cmd"

func main() {
	cmd.Execute()
}
