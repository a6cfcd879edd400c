package internal

import (
	"time"

	"github.com/google/btree"
)

// DefaultMatchWindow is how far in time a location fix is trusted. It only
// approximates "has not moved far since the last fix".
const DefaultMatchWindow = 60 * time.Minute

type matchCandidate struct {
	at    time.Time
	order int // position in the tagged set, breaks ties
	photo TaggedPhoto
}

func candidateLess(a, b matchCandidate) bool {
	if !a.at.Equal(b.at) {
		return a.at.Before(b.at)
	}
	return a.order < b.order
}

// Matcher finds, for an untagged photo, the closest tagged photo in time.
// It must be built from the complete tagged set.
type Matcher struct {
	tree          *btree.BTreeG[matchCandidate]
	windowMinutes int64
}

func NewMatcher(tagged []TaggedPhoto, window time.Duration) *Matcher {
	tree := btree.NewG[matchCandidate](8, candidateLess)
	for i, t := range tagged {
		tree.ReplaceOrInsert(matchCandidate{at: t.Instant, order: i, photo: t})
	}
	return &Matcher{tree: tree, windowMinutes: int64(window / time.Minute)}
}

// Match returns the tagged photo whose instant is at most the window away
// from u, in whole minutes. The smallest gap wins; equal gaps go to the
// photo that came first in the tagged set.
func (m *Matcher) Match(u UntaggedPhoto) (Match, bool) {
	// Minutes truncate, so anything strictly closer than window+1 can qualify.
	reach := time.Duration(m.windowMinutes+1) * time.Minute
	lo := matchCandidate{at: u.Instant.Add(-reach), order: -1}
	hi := matchCandidate{at: u.Instant.Add(reach), order: -1}

	var best *matchCandidate
	var bestMinutes int64
	m.tree.AscendRange(lo, hi, func(c matchCandidate) bool {
		d := absMinutes(minutesBetween(c.at, u.Instant))
		if d > m.windowMinutes {
			return true
		}
		if best == nil || d < bestMinutes || (d == bestMinutes && c.order < best.order) {
			picked := c
			best = &picked
			bestMinutes = d
		}
		return true
	})

	if best == nil {
		return Match{}, false
	}
	return Match{
		Photo:      u,
		Coordinate: best.photo.Coordinate,
		Source:     best.photo,
		Minutes:    bestMinutes,
	}, true
}

// Len is the number of tagged photos indexed.
func (m *Matcher) Len() int { return m.tree.Len() }
