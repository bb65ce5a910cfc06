// SPDX-License-Identifier: MPL-2.0

// Package scripthost is the surface the package core hands control to
// when it needs to talk to the embedding application: progress updates,
// logging, user prompts, and install-script execution.
package scripthost

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

type (
	// Host is what the package manager knows about the application it is
	// embedded in. Long-running operations report through it instead of
	// writing to the terminal directly.
	Host interface {
		// Progressf reports a step of a long-running operation.
		Progressf(format string, args ...any)

		// Infof and Warnf log informational and warning messages.
		Infof(format string, args ...any)
		Warnf(format string, args ...any)

		// Confirm asks the user a yes/no question. Implementations that
		// cannot prompt should answer with their configured default.
		Confirm(prompt string) (bool, error)
	}

	// ConsoleHost is the standard Host backed by a structured logger and
	// an interactive prompt on the given streams.
	ConsoleHost struct {
		Logger *log.Logger
		In     io.Reader
		Out    io.Writer

		// AssumeYes answers every Confirm without prompting.
		AssumeYes bool
	}
)

// NewConsoleHost builds a ConsoleHost writing prompts to out and
// reading answers from in.
func NewConsoleHost(logger *log.Logger, in io.Reader, out io.Writer) *ConsoleHost {
	return &ConsoleHost{Logger: logger, In: in, Out: out}
}

func (h *ConsoleHost) Progressf(format string, args ...any) {
	h.Logger.Info(fmt.Sprintf(format, args...))
}

func (h *ConsoleHost) Infof(format string, args ...any) {
	h.Logger.Info(fmt.Sprintf(format, args...))
}

func (h *ConsoleHost) Warnf(format string, args ...any) {
	h.Logger.Warn(fmt.Sprintf(format, args...))
}

// Confirm prompts on Out and reads a single line from In. Anything but
// "y"/"yes" (case-insensitive) is a no.
func (h *ConsoleHost) Confirm(prompt string) (bool, error) {
	if h.AssumeYes {
		return true, nil
	}

	if _, err := fmt.Fprintf(h.Out, "%s [y/N] ", prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := bufio.NewReader(h.In).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// SilentHost discards progress and log output and answers every prompt
// with a fixed default. Useful for non-interactive embedding and tests.
type SilentHost struct {
	// Default is the answer given to every Confirm call.
	Default bool
}

func (h *SilentHost) Progressf(string, ...any)     {}
func (h *SilentHost) Infof(string, ...any)         {}
func (h *SilentHost) Warnf(string, ...any)         {}
func (h *SilentHost) Confirm(string) (bool, error) { return h.Default, nil }
