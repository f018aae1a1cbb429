// The main package for the isitchristmas-screenshot executable.
package main

import "isitchristmas-screenshot/cmd"

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
