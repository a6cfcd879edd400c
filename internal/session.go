package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RunManifest appends one JSON line per event of a run. A nil *RunManifest
// accepts every call and writes nothing.
type RunManifest struct {
	Root string
	f    *os.File
}

// ManifestEvent represents a single event in the manifest log
type ManifestEvent struct {
	Event   string      `json:"event"`
	Ts      string      `json:"ts"`
	Path    string      `json:"path,omitempty"`
	Instant string      `json:"instant,omitempty"`
	Coord   *Coordinate `json:"coord,omitempty"`
	Raw     *Coordinate `json:"raw_coord,omitempty"`
	Source  string      `json:"source,omitempty"`
	Minutes *int64      `json:"minutes,omitempty"`
	Outcome string      `json:"outcome,omitempty"`
	Error   string      `json:"error,omitempty"`

	// Error details (for categorized errors)
	ErrorCategory   string `json:"error_category,omitempty"`
	ErrorSeverity   string `json:"error_severity,omitempty"`
	ErrorSuggestion string `json:"error_suggestion,omitempty"`

	// Run start/end fields
	Root       string `json:"root,omitempty"`
	TotalFiles int    `json:"total_files,omitempty"`
	Tagged     int    `json:"tagged,omitempty"`
	Untagged   int    `json:"untagged,omitempty"`
	Skipped    int    `json:"skipped,omitempty"`
	Assigned   int    `json:"assigned,omitempty"`
	Reassigned int    `json:"reassigned,omitempty"`
	ErrorCount int    `json:"errors,omitempty"`
}

// NewRunManifest creates (or truncates) the manifest at path.
func NewRunManifest(path, root string) (*RunManifest, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest file: %w", err)
	}
	return &RunManifest{Root: root, f: f}, nil
}

func (s *RunManifest) LogRunStart(totalFiles int) error {
	return s.writeEvent(ManifestEvent{
		Event:      "run_start",
		Root:       s.rootOrEmpty(),
		TotalFiles: totalFiles,
	})
}

func (s *RunManifest) LogTagged(p TaggedPhoto) error {
	raw := p.GPS.Raw()
	return s.writeEvent(ManifestEvent{
		Event:   "tagged",
		Path:    p.Path,
		Instant: p.Instant.UTC().Format(time.RFC3339),
		Coord:   &p.Coordinate,
		Raw:     &raw,
	})
}

func (s *RunManifest) LogUntagged(p UntaggedPhoto) error {
	return s.writeEvent(ManifestEvent{
		Event:   "untagged",
		Path:    p.Path,
		Instant: p.Instant.UTC().Format(time.RFC3339),
	})
}

func (s *RunManifest) LogSkipped(o ClassifyOutcome) error {
	event := ManifestEvent{
		Event:   "skipped",
		Path:    o.Path,
		Outcome: o.Kind.String(),
	}
	if o.Err != nil {
		event.Error = o.Err.Error()
	}
	return s.writeEvent(event)
}

func (s *RunManifest) LogGeotagged(m Match) error {
	minutes := m.Minutes
	return s.writeEvent(ManifestEvent{
		Event:   "geotagged",
		Path:    m.Photo.Path,
		Coord:   &m.Coordinate,
		Source:  m.Source.Path,
		Minutes: &minutes,
	})
}

func (s *RunManifest) LogTimesSet(path string, t time.Time) error {
	return s.writeEvent(ManifestEvent{
		Event:   "times_set",
		Path:    path,
		Instant: t.UTC().Format(time.RFC3339),
	})
}

// LogDetailedError logs a categorized error with full details
func (s *RunManifest) LogDetailedError(procErr *ProcessError) error {
	return s.writeEvent(ManifestEvent{
		Event:           "error",
		Path:            procErr.FilePath,
		Error:           procErr.OriginalErr.Error(),
		ErrorCategory:   string(procErr.Category),
		ErrorSeverity:   string(procErr.Severity),
		ErrorSuggestion: procErr.Suggestion,
	})
}

func (s *RunManifest) LogRunEnd(r *RunResult) error {
	return s.writeEvent(ManifestEvent{
		Event:      "run_end",
		TotalFiles: r.Scanned,
		Tagged:     len(r.Tagged),
		Untagged:   len(r.Untagged),
		Skipped:    len(r.Skipped),
		Assigned:   r.Assigned,
		Reassigned: r.Reassigned,
		ErrorCount: r.Errors.Total,
	})
}

func (s *RunManifest) Close() error {
	if s == nil || s.f == nil {
		return nil
	}
	return s.f.Close()
}

func (s *RunManifest) rootOrEmpty() string {
	if s == nil {
		return ""
	}
	return s.Root
}

// writeEvent writes a manifest event as a JSON line
func (s *RunManifest) writeEvent(event ManifestEvent) error {
	if s == nil {
		return nil
	}
	event.Ts = time.Now().UTC().Format(time.RFC3339)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := s.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to manifest: %w", err)
	}
	return nil
}
