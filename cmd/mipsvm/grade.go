package main

import (
	"os"

	cli "gopkg.in/urfave/cli.v2"

	"github.com/cslab-edu/gomips32/internal/transport"
)

func gradeCommand() *cli.Command {
	return &cli.Command{
		Name:  "grade",
		Usage: "read one autograder JSON request from stdin, write the JSON response to stdout",
		Action: func(c *cli.Context) error {
			return transport.Run(os.Stdin, os.Stdout)
		},
	}
}
