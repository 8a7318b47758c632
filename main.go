package main

import "github.com/mpapenbr/racesim-manager-go/cmd"

func main() {
	cmd.Execute()
}
