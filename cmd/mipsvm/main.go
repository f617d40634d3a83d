// cmd/mipsvm is the command-line interface to the MIPS32 teaching emulator:
// assemble source, run it to completion, grade an autograder request, or
// step through a program in a line-oriented debugger shell.
package main

import (
	"os"

	cli "gopkg.in/urfave/cli.v2"

	"github.com/cslab-edu/gomips32/internal/log"
)

func main() {
	app := &cli.App{
		Name:  "mipsvm",
		Usage: "assemble, run, and grade MIPS32 teaching programs",
		Commands: []*cli.Command{
			assembleCommand(),
			runCommand(),
			gradeCommand(),
			replCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.DefaultLogger().Error(err.Error())
		os.Exit(1)
	}
}
