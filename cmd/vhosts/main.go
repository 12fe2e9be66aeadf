/*
This command loads virtual host definitions, checks and prints them,
resolves URLs with them, and serves the resolution over HTTP.

Usage:

	vhosts <command> [flags] [args]

For the list of commands and command line options, run:

	vhosts help
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zalando/vhosts/config"
)

type (
	command     string
	commandFunc func(cfg *config.Config, out io.Writer) error
)

const (
	check  command = "check"
	print  command = "print"
	search command = "search"
	serve  command = "serve"
	help   command = "help"
)

var commands = map[command]commandFunc{
	check:  checkCmd,
	print:  printCmd,
	search: searchCmd,
	serve:  serveCmd,
	help:   helpCmd,
}

var (
	missingCommand = errors.New("missing command")
	invalidCommand = errors.New("invalid command")
	missingFile    = errors.New("missing definition file")
	missingURL     = errors.New("missing url")
)

func printStderr(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
}

func exitErrHint(err error, hint bool) {
	if err == nil {
		os.Exit(0)
	}

	printStderr(err)
	if hint {
		printStderr()
		printHint()
	}

	os.Exit(-1)
}

func exitHint(err error) { exitErrHint(err, true) }
func exit(err error)     { exitErrHint(err, false) }

func getCommand(args []string) (command, error) {
	if len(args) < 2 {
		return "", missingCommand
	}

	cmd := command(args[1])
	if _, ok := commands[cmd]; !ok {
		return "", invalidCommand
	}

	return cmd, nil
}

func main() {
	cmd, err := getCommand(os.Args)
	if err != nil {
		exitHint(err)
	}

	cfg := config.NewConfig()
	if err := cfg.ParseArgs(os.Args[0]+" "+string(cmd), os.Args[2:]); err != nil {
		exitHint(err)
	}

	exit(commands[cmd](cfg, os.Stdout))
}
