package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v2"

	"github.com/cslab-edu/gomips32/internal/config"
	"github.com/cslab-edu/gomips32/internal/machine"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "load and run a program to completion or the instruction limit",
		ArgsUsage: "FILE.s",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-instructions", Usage: "instruction budget before ExecutionLimitExceeded"},
			&cli.StringFlag{Name: "breakpoints", Usage: "file of 0-based source line numbers"},
			&cli.StringFlag{Name: "loglevel", Value: "info", Usage: "debug, info, warn, or error"},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("run: expected exactly one source file")
			}

			src, err := os.ReadFile(c.Args().First())
			if err != nil {
				return err
			}

			cfg := config.Config{
				MaxInstructions: c.Int("max-instructions"),
				BreakpointsFile: c.String("breakpoints"),
				LogLevel:        c.String("loglevel"),
			}

			m := machine.New(cfg.Logger())

			if res := m.LoadSource(string(src)); res.Error != "" {
				return fmt.Errorf("%s", res.Error)
			}

			if err := cfg.Apply(m.CPU()); err != nil {
				return err
			}

			res := m.Run()

			fmt.Fprintf(c.App.Writer, "result: %s\n", orOK(res.Error))
			printSnapshot(c.App.Writer, res.Snapshot)

			return nil
		},
	}
}

func orOK(s string) string {
	if s == "" {
		return "ok"
	}

	return s
}
