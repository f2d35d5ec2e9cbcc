package main

import "github.com/chazu/strut/cmd/strut/cmd"

func main() {
	cmd.Execute()
}
