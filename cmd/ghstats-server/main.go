// Command ghstats-server is the entry point dispatching to the serve and
// snapshot subcommands, in the teacher's cmd/github-stats multi-command
// style.
package main

import (
	"fmt"
	"os"

	"github.com/leonardokr/ghstats/command/serve"
	"github.com/leonardokr/ghstats/command/snapshot"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = serve.Run(os.Args[2:])
	case "snapshot":
		err = snapshot.Run(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "ghstats-server: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "ghstats-server:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ghstats-server <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  serve      run the HTTP API server")
	fmt.Fprintln(os.Stderr, "  snapshot   save one snapshot and dispatch webhooks for a username")
}
