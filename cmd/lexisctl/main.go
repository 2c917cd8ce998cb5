// Command lexisctl is the offline command-line companion of the Lexis server.
package main

import (
	"fmt"
	"os"

	"github.com/phrazzld/lexis/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
