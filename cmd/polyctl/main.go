package main

import "github.com/polystage/polystage/cmd/polyctl/cmd"

func main() {
	cmd.Execute()
}
