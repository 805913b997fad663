// Command pecco compiles pecco-lang source files.
package main

import (
	"os"

	"pecco/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:]))
}
