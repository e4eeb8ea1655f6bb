package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Checkpoint persists finished pages so an interrupted batch can resume.
// The file is keyed by document name: a checkpoint written for another
// document is ignored.
type Checkpoint struct {
	Path string

	mu    sync.Mutex
	state checkpointState
}

type checkpointState struct {
	Document string         `json:"document"`
	Updated  time.Time      `json:"updated"`
	Records  map[int]Record `json:"records"`
}

// NewCheckpoint returns a checkpoint stored at path.
func NewCheckpoint(path string) *Checkpoint {
	return &Checkpoint{Path: path}
}

// Load reads the finished pages of document. A missing file or a file
// written for another document yields no records.
func (c *Checkpoint) Load(document string) (map[int]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = checkpointState{Document: document, Records: make(map[int]Record)}

	data, err := os.ReadFile(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return map[int]Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var st checkpointState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", c.Path, err)
	}
	if st.Document != document {
		return map[int]Record{}, nil
	}

	out := make(map[int]Record, len(st.Records))
	for page, rec := range st.Records {
		c.state.Records[page] = rec
		out[page] = rec
	}
	return out, nil
}

// Save records a finished page and rewrites the checkpoint file.
func (c *Checkpoint) Save(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Records == nil {
		c.state.Records = make(map[int]Record)
	}
	c.state.Records[rec.Page] = rec
	c.state.Updated = time.Now().UTC()

	data, err := json.MarshalIndent(c.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	// Write then rename so a crash never leaves a truncated file
	tmp := c.Path + ".tmp"
	if dir := filepath.Dir(c.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create checkpoint directory: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, c.Path); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// Clear removes the checkpoint file.
func (c *Checkpoint) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Records = nil
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	return nil
}
