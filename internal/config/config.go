// Package config holds the command-line configuration of cmd/mipsvm's run
// sub-command: the instruction budget, an optional breakpoints file, and
// the logging level.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cslab-edu/gomips32/internal/cpu"
	"github.com/cslab-edu/gomips32/internal/log"
)

// Config is the set of values the run sub-command's `urfave/cli.v2` flags
// populate; the flag definitions and their defaults live in cmd/mipsvm.
type Config struct {
	// MaxInstructions bounds a run(); zero means use the CPU's own default.
	MaxInstructions int

	// BreakpointsFile names a file of 0-based source line numbers, one per
	// line, to install before running.
	BreakpointsFile string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
}

// Logger builds the logger the config's LogLevel describes.
func (c Config) Logger() *log.Logger {
	logger := log.DefaultLogger()

	if c.LogLevel != "" {
		var level log.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err == nil {
			log.LogLevel.Set(level)
		}
	}

	return logger
}

// Apply installs the configuration onto a CPU: the instruction limit and
// any breakpoints named by BreakpointsFile.
func (c Config) Apply(m *cpu.CPU) error {
	if c.MaxInstructions > 0 {
		m.MaxInstructions = c.MaxInstructions
	}

	if c.BreakpointsFile == "" {
		return nil
	}

	lines, err := readBreakpoints(c.BreakpointsFile)
	if err != nil {
		return fmt.Errorf("config: reading breakpoints file %q: %w", c.BreakpointsFile, err)
	}

	m.SetBreakpoints(lines)

	return nil
}

func readBreakpoints(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []int

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("invalid line number %q: %w", text, err)
		}

		lines = append(lines, n)
	}

	return lines, scanner.Err()
}
