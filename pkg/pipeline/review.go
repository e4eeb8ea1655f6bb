package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrSkipped marks a page the reviewer chose to leave out.
	ErrSkipped = errors.New("page skipped by reviewer")

	// ErrQuit stops the batch when the reviewer quits. The page under
	// review is left unprocessed so a resumed batch asks again.
	ErrQuit = errors.New("review stopped by user")
)

// Task asks a reviewer to confirm the OCR text of a page before
// extraction.
type Task struct {
	ID         uuid.UUID
	Document   string
	Page       int
	Text       string
	Confidence float64
}

// Decision answers a Task. An empty Text keeps the OCR text.
type Decision struct {
	TaskID uuid.UUID
	Text   string
	Skip   bool
	Quit   bool // Stop the batch; takes precedence over Skip
}

// Reviewer validates OCR text. Run calls Review from one goroutine at a
// time, so implementations may prompt a terminal.
type Reviewer interface {
	Review(ctx context.Context, task Task) (Decision, error)
}

// ReviewFunc adapts a function to Reviewer.
type ReviewFunc func(ctx context.Context, task Task) (Decision, error)

// Review implements Reviewer.
func (f ReviewFunc) Review(ctx context.Context, task Task) (Decision, error) {
	return f(ctx, task)
}

// ErrTaskMismatch is returned when a decision answers another task.
var ErrTaskMismatch = errors.New("review decision does not match task")

func newTask(document string, page int, text string, confidence float64) Task {
	return Task{ID: uuid.New(), Document: document, Page: page, Text: text, Confidence: confidence}
}
