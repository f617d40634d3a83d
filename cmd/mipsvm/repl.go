package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	cli "gopkg.in/urfave/cli.v2"

	"github.com/cslab-edu/gomips32/internal/machine"
)

func replCommand() *cli.Command {
	return &cli.Command{
		Name:      "repl",
		Usage:     "a line-oriented debugger shell: step, run, break <line>, print, quit",
		ArgsUsage: "[FILE.s]",
		Action: func(c *cli.Context) error {
			m := machine.New(nil)

			if c.Args().Len() == 1 {
				src, err := os.ReadFile(c.Args().First())
				if err != nil {
					return err
				}

				if res := m.LoadSource(string(src)); res.Error != "" {
					fmt.Fprintln(c.App.Writer, res.Error)
				}
			}

			return runRepl(m, c.App.Writer)
		},
	}
}

func runRepl(m *machine.Machine, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	var breakpoints []int

	for {
		input, err := line.Prompt("mipsvm> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		fields := strings.Fields(input)

		switch fields[0] {
		case "step":
			res := m.Step()
			fmt.Fprintln(out, orOK(res.Error))
		case "run":
			res := m.Run()
			fmt.Fprintln(out, orOK(res.Error))
		case "break":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: break <line>")
				continue
			}

			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintln(out, "usage: break <line>")
				continue
			}

			breakpoints = append(breakpoints, n)
			m.SetBreakpoints(breakpoints)
		case "print":
			fmt.Fprintln(out, m.NextInstruction())
			printSnapshot(out, m.Snapshot())
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q (step, run, break <line>, print, quit)\n", fields[0])
		}
	}
}
