package main

import "github.com/bascanada/proposalviewer/cmd"

func main() {
	cmd.Execute()
}
