package main

import (
	"fmt"
	"io"

	"github.com/zalando/vhosts/config"
)

const helpHint = "To print vhosts usage, enter:\n\nvhosts help"

const commandsUsage = `Commands:

  check [flags] [file]          load and register the definitions, report the first error
  print [flags] [file]          print the environments and the search order
  search [flags] [file] url...  resolve the urls, optionally in the context set by -context-path
  serve [flags]                 resolve the incoming requests, and respond with the match as JSON
  help                          print this help

The definition file is taken from -vhosts-file when it is not an argument.

Flags:
`

func printHint() {
	printStderr(helpHint)
}

func helpCmd(cfg *config.Config, out io.Writer) error {
	fmt.Fprint(out, commandsUsage)
	cfg.Flags.SetOutput(out)
	cfg.Flags.PrintDefaults()
	return nil
}
