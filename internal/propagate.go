package internal

import (
	"context"
	"time"
)

// RunResult is everything one run produced.
type RunResult struct {
	Scanned  int
	Tagged   []TaggedPhoto
	Untagged []UntaggedPhoto
	Skipped  []ClassifyOutcome
	Matches  []Match // geotags written successfully

	Assigned   int // geotags written
	Reassigned int // file time syncs that succeeded
	Errors     *ErrorStats
}

// Propagator runs the three passes: classify everything, geotag untagged
// photos against the full tagged set, then sync untagged file times.
type Propagator struct {
	Classifier *Classifier
	Writer     GeotagWriter
	SyncTimes  func(h *FileAttributeHandle, t time.Time) error
	Window     time.Duration
	Manifest   *RunManifest
	Log        *Logger
}

func NewPropagator(writer GeotagWriter, window time.Duration, log *Logger) *Propagator {
	return &Propagator{
		Classifier: NewClassifier(),
		Writer:     writer,
		SyncTimes:  SyncTimes,
		Window:     window,
		Log:        log,
	}
}

// Run processes paths in order. Per-file failures are recorded in the
// result and never stop the run; only ctx cancellation does, and then the
// partial result is returned with ctx's error.
func (p *Propagator) Run(ctx context.Context, paths []string) (*RunResult, error) {
	res := &RunResult{Scanned: len(paths), Errors: NewErrorStats()}
	p.Manifest.LogRunStart(len(paths))

	if err := p.classifyAll(ctx, paths, res); err != nil {
		return res, err
	}

	p.Log.Info().
		Int("tagged", len(res.Tagged)).
		Int("untagged", len(res.Untagged)).
		Int("skipped", len(res.Skipped)).
		Msg("Classified files")

	switch {
	case len(res.Untagged) == 0:
		p.Log.Info().Msg("No untagged photos found")
	case len(res.Tagged) == 0:
		p.Log.Info().Msg("No geotagged photos to take locations from")
	default:
		if err := p.writeGeotags(ctx, res); err != nil {
			return res, err
		}
	}

	if err := p.syncUntagged(ctx, res); err != nil {
		return res, err
	}

	p.Manifest.LogRunEnd(res)
	return res, nil
}

// classifyAll is pass one. Tagged photos get their file times fixed as soon
// as the whole corpus is classified.
func (p *Propagator) classifyAll(ctx context.Context, paths []string, res *RunResult) error {
	cl, err := p.Classifier.ClassifyAll(ctx, paths)
	res.Tagged, res.Untagged, res.Skipped = cl.Tagged, cl.Untagged, cl.Skipped
	if err != nil {
		return err
	}

	for _, o := range cl.Outcomes {
		switch o.Kind {
		case OutcomeTagged:
			p.Manifest.LogTagged(*o.Tagged)
			p.Log.Debug().Str("path", o.Path).Stringer("coordinate", o.Tagged.Coordinate).
				Time("instant", o.Tagged.Instant).Msg("Geotagged photo")
		case OutcomeUntagged:
			p.Manifest.LogUntagged(*o.Untagged)
			p.Log.Debug().Str("path", o.Path).Time("instant", o.Untagged.Instant).Msg("Untagged photo")
		case SkipNotJPEG:
			// not a photo, nothing to report
		default:
			p.Manifest.LogSkipped(o)
			p.fail(o.Path, ErrorCategoryRead, o.Err, res)
		}
	}

	for _, o := range cl.Outcomes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if o.Kind == OutcomeTagged {
			p.syncOne(o.Handle, o.Tagged.Instant, res)
		}
	}
	return nil
}

// writeGeotags is pass two.
func (p *Propagator) writeGeotags(ctx context.Context, res *RunResult) error {
	matcher := NewMatcher(res.Tagged, p.Window)
	for _, u := range res.Untagged {
		if err := ctx.Err(); err != nil {
			return err
		}

		m, ok := matcher.Match(u)
		if !ok {
			p.Log.Debug().Str("path", u.Path).Msg("No geotagged photo within window")
			continue
		}

		if err := p.Writer.WriteGeotag(u.Path, m.Coordinate); err != nil {
			p.fail(u.Path, ErrorCategoryWrite, err, res)
			continue
		}

		res.Assigned++
		res.Matches = append(res.Matches, m)
		p.Manifest.LogGeotagged(m)
		p.Log.Info().Str("path", u.Path).Stringer("coordinate", m.Coordinate).
			Str("source", m.Source.Path).Int64("minutes", m.Minutes).Msg("Geotag written")
	}
	return nil
}

// syncUntagged is pass three, run whether or not a geotag was written.
func (p *Propagator) syncUntagged(ctx context.Context, res *RunResult) error {
	for _, u := range res.Untagged {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.syncOne(u.Handle, u.Instant, res)
	}
	return nil
}

func (p *Propagator) syncOne(h *FileAttributeHandle, t time.Time, res *RunResult) {
	if err := p.SyncTimes(h, t); err != nil {
		path := ""
		if h != nil {
			path = h.Path()
		}
		p.fail(path, ErrorCategoryTimestamp, err, res)
		return
	}
	res.Reassigned++
	p.Manifest.LogTimesSet(h.Path(), t)
}

func (p *Propagator) fail(path string, category ErrorCategory, err error, res *RunResult) {
	procErr := CategorizeError(path, category, err)
	if procErr == nil {
		return
	}
	res.Errors.Add(procErr)
	p.Manifest.LogDetailedError(procErr)

	p.Log.Warn().Str("path", path).Str("category", string(procErr.Category)).Err(err).Msg(failureMessages[category])
}

var failureMessages = map[ErrorCategory]string{
	ErrorCategoryRead:      "Skipping file",
	ErrorCategoryWrite:     "Could not write geotag, file left unchanged",
	ErrorCategoryTimestamp: "Could not set file times",
}
