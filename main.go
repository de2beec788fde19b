package main

import "github.com/fakeyudi/worktime/cmd"

// Set by ldflags at release time.
var version = "dev"

func main() {
	cmd.Execute(version)
}
