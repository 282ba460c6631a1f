package main

import "github.com/fgrehm/dockman/cmd"

func main() {
	cmd.Execute()
}
