package internal

import (
	"context"
	"errors"
	"fmt"
)

// OutcomeKind names every way classification of one file can end.
type OutcomeKind int

const (
	OutcomeTagged OutcomeKind = iota
	OutcomeUntagged
	SkipNotJPEG
	SkipReadError
	SkipNoCaptureTime
	SkipInvalidCoordinate
	SkipNoInstant
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeTagged:
		return "tagged"
	case OutcomeUntagged:
		return "untagged"
	case SkipNotJPEG:
		return "not_jpeg"
	case SkipReadError:
		return "read_error"
	case SkipNoCaptureTime:
		return "no_capture_time"
	case SkipInvalidCoordinate:
		return "invalid_coordinate"
	case SkipNoInstant:
		return "no_instant"
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

// ClassifyOutcome is the result for one file. Exactly one of Tagged and
// Untagged is set for the two non-skip kinds. Handle is set for both so the
// caller can sync file times.
type ClassifyOutcome struct {
	Path     string
	Kind     OutcomeKind
	Tagged   *TaggedPhoto
	Untagged *UntaggedPhoto
	Handle   *FileAttributeHandle
	Err      error
}

func (o ClassifyOutcome) Skipped() bool {
	return o.Kind != OutcomeTagged && o.Kind != OutcomeUntagged
}

// Classifier turns files into tagged or untagged records.
type Classifier struct {
	Reader MetadataReader
	Sniff  func(path string) (bool, error)
}

func NewClassifier() *Classifier {
	return &Classifier{Reader: ExifReader{}, Sniff: IsJPEG}
}

func (c *Classifier) Classify(path string) ClassifyOutcome {
	isJPEG, err := c.Sniff(path)
	if err != nil {
		return skip(path, SkipReadError, fmt.Errorf("detect container: %w", err))
	}
	if !isJPEG {
		return skip(path, SkipNotJPEG, nil)
	}

	md, err := c.Reader.ReadMetadata(path)
	if err != nil {
		if errors.Is(err, ErrNoExif) {
			return skip(path, SkipNoCaptureTime, err)
		}
		return skip(path, SkipReadError, fmt.Errorf("read metadata: %w", err))
	}

	if md.HasGPS {
		return c.classifyTagged(path, md)
	}
	return c.classifyUntagged(path, md)
}

func (c *Classifier) classifyUntagged(path string, md *Metadata) ClassifyOutcome {
	if md.CaptureTime == nil {
		return skip(path, SkipNoCaptureTime, ErrNoCaptureTime)
	}

	h, err := NewFileAttributeHandle(path)
	if err != nil {
		return skip(path, SkipReadError, fmt.Errorf("capture file attributes: %w", err))
	}

	return ClassifyOutcome{
		Path: path,
		Kind: OutcomeUntagged,
		Untagged: &UntaggedPhoto{
			Path:    path,
			Instant: *md.CaptureTime,
			Handle:  h,
		},
		Handle: h,
	}
}

func (c *Classifier) classifyTagged(path string, md *Metadata) ClassifyOutcome {
	// Validity is judged on the raw fix. A fix a few metres off (0,0) is
	// still a fix, even if it rounds to zero.
	if md.Coordinate == nil || md.Coordinate.IsZero() {
		return skip(path, SkipInvalidCoordinate, ErrInvalidCoordinate)
	}

	instant, ok := Reconcile(md.CaptureTime, md.GPSTime)
	if !ok {
		return skip(path, SkipNoInstant, ErrNoInstant)
	}

	h, err := NewFileAttributeHandle(path)
	if err != nil {
		return skip(path, SkipReadError, fmt.Errorf("capture file attributes: %w", err))
	}

	return ClassifyOutcome{
		Path: path,
		Kind: OutcomeTagged,
		Tagged: &TaggedPhoto{
			Path:       path,
			Instant:    instant,
			Coordinate: md.Coordinate.Rounded(),
			GPS:        GPSPayload{raw: *md.Coordinate, gpsTime: md.GPSTime},
		},
		Handle: h,
	}
}

// Classification is the owned output of the classify pass, in walk order.
type Classification struct {
	Outcomes []ClassifyOutcome // every file, skips included
	Tagged   []TaggedPhoto
	Untagged []UntaggedPhoto
	Skipped  []ClassifyOutcome
}

// ClassifyAll classifies paths in order. It stops early only when ctx is
// done, returning what it has so far.
func (c *Classifier) ClassifyAll(ctx context.Context, paths []string) (*Classification, error) {
	cl := &Classification{Outcomes: make([]ClassifyOutcome, 0, len(paths))}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return cl, err
		}

		o := c.Classify(path)
		cl.Outcomes = append(cl.Outcomes, o)
		switch o.Kind {
		case OutcomeTagged:
			cl.Tagged = append(cl.Tagged, *o.Tagged)
		case OutcomeUntagged:
			cl.Untagged = append(cl.Untagged, *o.Untagged)
		default:
			cl.Skipped = append(cl.Skipped, o)
		}
	}
	return cl, nil
}

func skip(path string, kind OutcomeKind, err error) ClassifyOutcome {
	return ClassifyOutcome{Path: path, Kind: kind, Err: err}
}
