// Package pipeline runs the page batch: OCR of the selected region,
// optional human review, coordinate extraction and conversion.
//
// Pages are processed concurrently up to Config.Workers. Cancelling the
// context, or a reviewer quitting, stops new pages from starting and drops
// pages not yet reviewed; reviewed pages finish so their results can be
// checkpointed. Failures never abort the batch:
// they are recorded on the page's Record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gardar/ocrcoords/pkg/convert"
	"github.com/gardar/ocrcoords/pkg/coords"
	"github.com/gardar/ocrcoords/pkg/ocr"
)

// Runner processes pages of one document.
type Runner struct {
	Recognizer ocr.Recognizer
	Converter  *convert.Converter
	Reviewer   Reviewer    // Optional
	Checkpoint *Checkpoint // Optional
	Config     Config

	reviewMu sync.Mutex
	logMu    sync.Mutex
}

// ErrOCR wraps recognition failures. Such pages are not checkpointed so a
// resumed batch retries them.
var ErrOCR = errors.New("OCR failed")

// Run processes pages and returns one record per page, sorted by page
// number. Pages found in the checkpoint are not processed again. The error
// is non-nil when the context was cancelled or the reviewer quit before
// every page finished; the records of finished pages are returned with it.
func (r *Runner) Run(ctx context.Context, pages []int) ([]Record, error) {
	// Validate inputs
	if r.Recognizer == nil || r.Converter == nil {
		return nil, errors.New("pipeline needs a recognizer and a converter")
	}
	if err := r.Config.Region.Validate(); err != nil {
		return nil, err
	}

	done := map[int]Record{}
	if r.Checkpoint != nil {
		var err error
		if done, err = r.Checkpoint.Load(r.Config.Document); err != nil {
			return nil, err
		}
		if len(done) > 0 {
			r.logf("Resuming %s: %d page(s) already processed\n", r.Config.Document, len(done))
		}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		mu      sync.Mutex
		records []Record
		stopped error
	)
	for _, p := range pages {
		if rec, ok := done[p]; ok {
			records = append(records, rec)
		}
	}
	stop := func(err error) {
		cancel(err)
		mu.Lock()
		defer mu.Unlock()
		if stopped == nil {
			stopped = context.Cause(ctx)
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(max(r.Config.Workers, 1))

	for _, page := range pages {
		if _, ok := done[page]; ok {
			continue
		}
		// Stop issuing pages once cancelled
		if err := ctx.Err(); err != nil {
			stop(err)
			break
		}
		page := page
		g.Go(func() error {
			// The slot may have opened after cancellation
			if err := ctx.Err(); err != nil {
				stop(err)
				return nil
			}
			rec, err := r.processPage(ctx, page)
			if err != nil {
				stop(err)
				return nil
			}

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()

			if r.Checkpoint != nil && !errors.Is(rec.Err, ErrOCR) {
				if err := r.Checkpoint.Save(rec); err != nil {
					r.logf("Warning: %v\n", err)
				}
			}
			return nil
		})
	}
	// Failures are recorded per page; goroutines never return an error.
	g.Wait()

	SortByPage(records)
	if stopped != nil {
		return records, fmt.Errorf("batch interrupted after %d of %d pages: %w", len(records), len(pages), stopped)
	}

	if r.Checkpoint != nil {
		if err := r.Checkpoint.Clear(); err != nil {
			r.logf("Warning: %v\n", err)
		}
	}
	return records, nil
}

// processPage runs one page through recognition, review, extraction and
// conversion. It returns an error, and no record, when the batch stopped
// before the page was reviewed. Once past review the page always finishes.
func (r *Runner) processPage(ctx context.Context, page int) (Record, error) {
	rec := Record{Page: page}

	res, err := r.Recognizer.Recognize(ctx, page, r.Config.Region)
	if err != nil {
		if ctx.Err() != nil {
			return Record{}, context.Cause(ctx)
		}
		rec.Err = fmt.Errorf("%w: %w", ErrOCR, err)
		r.logf("Warning: page %d: %v\n", page, rec.Err)
		return rec, nil
	}
	rec.Text = res.Text
	rec.Confidence = res.Confidence

	if res.Confidence < r.Config.MinConfidence {
		r.logf("Warning: page %d: low OCR confidence (%.0f%%), check the extracted values\n", page, res.Confidence)
	}

	if r.Reviewer != nil {
		err := r.review(ctx, &rec)
		switch {
		case errors.Is(err, ErrQuit):
			return Record{}, ErrQuit
		case err != nil && ctx.Err() != nil:
			return Record{}, context.Cause(ctx)
		case err != nil:
			rec.Err = err
			return rec, nil
		}
	}

	m, err := coords.ExtractMatch(rec.Text)
	if err != nil {
		rec.Err = fmt.Errorf("page %d: %w", page, err)
		if r.Config.Debug {
			r.logf("Page %d: %v in %q\n", page, err, rec.Text)
		}
		return rec, nil
	}
	rec.Match = m

	// A reviewed page is converted even if the batch is stopping
	cctx := context.WithoutCancel(ctx)
	opts := r.Config.convertOptions()
	if r.Config.SourceID == "" || r.Config.SourceID == AutoDetect {
		rec.Result = r.Converter.ConvertAuto(cctx, m.Pair, r.Config.TargetID, opts)
	} else {
		rec.Result = r.Converter.Convert(cctx, m.Pair, r.Config.SourceID, r.Config.TargetID, opts)
	}

	if r.Config.Debug {
		r.logf("Page %d: %s (%g, %g) -> %s (%.3f, %.3f) [%s]\n",
			page, rec.Result.Source, m.X, m.Y, rec.Result.Target, rec.Result.X, rec.Result.Y, rec.Result.Tier)
	}
	return rec, nil
}

// review asks the reviewer about a page. Reviews are serialized, and pages
// still waiting when the batch stops are not shown.
func (r *Runner) review(ctx context.Context, rec *Record) error {
	r.reviewMu.Lock()
	defer r.reviewMu.Unlock()

	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	task := newTask(r.Config.Document, rec.Page, rec.Text, rec.Confidence)
	d, err := r.Reviewer.Review(ctx, task)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}
	if d.TaskID != task.ID {
		return fmt.Errorf("%w: page %d", ErrTaskMismatch, rec.Page)
	}
	if d.Quit {
		return ErrQuit
	}
	if d.Skip {
		return ErrSkipped
	}
	if d.Text != "" {
		rec.Text = d.Text
	}
	rec.Reviewed = true
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	r.logMu.Lock()
	defer r.logMu.Unlock()
	fmt.Fprintf(r.Config.getLogger(), format, args...)
}
