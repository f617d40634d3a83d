package main

import (
	"fmt"
	"os"
	"strings"

	cli "gopkg.in/urfave/cli.v2"

	"github.com/cslab-edu/gomips32/internal/assembler"
	"github.com/cslab-edu/gomips32/internal/lexer"
	"github.com/cslab-edu/gomips32/internal/log"
	"github.com/cslab-edu/gomips32/internal/memory"
	"github.com/cslab-edu/gomips32/internal/parser"
)

func assembleCommand() *cli.Command {
	return &cli.Command{
		Name:      "asm",
		Usage:     "assemble a source file and print its symbol table and disassembly",
		ArgsUsage: "FILE.s",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("asm: expected exactly one source file")
			}

			src, err := os.ReadFile(c.Args().First())
			if err != nil {
				return err
			}

			logger := log.DefaultLogger()

			toks, err := lexer.Lex(strings.NewReader(string(src)))
			if err != nil {
				return fmt.Errorf("Syntax Error -- %w", err)
			}

			mem := memory.New()

			p := parser.New(mem, logger)
			if err := p.Parse(toks); err != nil {
				return fmt.Errorf("Syntax Error -- %w", err)
			}

			prog, err := assembler.Assemble(p.Statements(), p.Symbols(), logger)
			if err != nil {
				return fmt.Errorf("Syntax Error -- %w", err)
			}

			fmt.Fprintln(c.App.Writer, "Symbols:")

			for name, addr := range prog.Symbols() {
				fmt.Fprintf(c.App.Writer, "  %-16s 0x%08x\n", name, addr)
			}

			fmt.Fprintln(c.App.Writer, "\nText:")

			for i := 0; i < prog.Len(); i++ {
				in, _ := prog.InstructionAt(i)
				fmt.Fprintf(c.App.Writer, "  0x%08x: %s\n", prog.IndexToPC(i), in.String())
			}

			return nil
		},
	}
}
