package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/gardar/ocrcoords/pkg/pipeline"
)

// terminalReviewer shows the OCR text of each page and reads a correction
// from the controlling terminal.
type terminalReviewer struct {
	fd int
	rw io.ReadWriter
}

func newTerminalReviewer() (*terminalReviewer, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("-review needs an interactive terminal on stdin")
	}
	return &terminalReviewer{fd: fd, rw: stdio{os.Stdin, os.Stdout}}, nil
}

type stdio struct {
	io.Reader
	io.Writer
}

// Review implements pipeline.Reviewer.
func (r *terminalReviewer) Review(ctx context.Context, task pipeline.Task) (pipeline.Decision, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.Decision{}, err
	}
	state, err := term.MakeRaw(r.fd)
	if err != nil {
		return pipeline.Decision{}, fmt.Errorf("failed to switch terminal to raw mode: %w", err)
	}
	defer term.Restore(r.fd, state)

	t := term.NewTerminal(r.rw, "")
	fmt.Fprintf(t, "\n--- %s, page %d (OCR confidence %.0f%%) ---\n", task.Document, task.Page, task.Confidence)
	fmt.Fprintln(t, task.Text)
	fmt.Fprintln(t, "Enter: accept | text: replace (\" / \" for a line break) | s: skip | q: quit")
	t.SetPrompt("> ")

	line, err := t.ReadLine()
	if errors.Is(err, io.EOF) {
		line = ""
	} else if err != nil {
		return pipeline.Decision{}, err
	}

	return decide(task, line), nil
}

// decide maps a reply to a decision.
func decide(task pipeline.Task, reply string) (d pipeline.Decision) {
	d.TaskID = task.ID
	switch reply = strings.TrimSpace(reply); strings.ToLower(reply) {
	case "":
	case "s", "skip":
		d.Skip = true
	case "q", "quit":
		d.Quit = true
	default:
		d.Text = strings.ReplaceAll(reply, " / ", "\n")
	}
	return d
}
