package main

import "github.com/openpmp/pmpq/cmd"

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	cmd.Version = Version
	cmd.Execute()
}
