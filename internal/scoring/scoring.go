package scoring

import (
	"math"
	"strings"

	"ripmedia/internal/model"
	"ripmedia/internal/textutil"
)

const (
	// DefaultDurationWindow is the duration mismatch, in seconds, at which the
	// duration component reaches zero.
	DefaultDurationWindow = 30.0
	// DefaultLowConfidence is the confidence below which the pipeline refuses
	// to pick a candidate automatically.
	DefaultLowConfidence = 0.6
	// ExternalIDBonus is added when the wanted ISRC appears in the candidate text.
	ExternalIDBonus = 0.15
)

// Weights controls how the title, artist and duration components blend.
type Weights struct {
	Title    float64
	Artist   float64
	Duration float64
}

var (
	// WeightsWithDuration apply when both sides carry a duration.
	WeightsWithDuration = Weights{Title: 0.45, Artist: 0.35, Duration: 0.20}
	// WeightsWithoutDuration apply when either duration is unknown.
	WeightsWithoutDuration = Weights{Title: 0.7, Artist: 0.3}
)

// Scorer computes match confidence between a wanted item and a candidate.
// The zero value uses the default duration window.
type Scorer struct {
	DurationWindow float64
}

// New returns a Scorer using window seconds, falling back to the default for
// non-positive values.
func New(window float64) Scorer {
	if window <= 0 {
		window = DefaultDurationWindow
	}
	return Scorer{DurationWindow: window}
}

// Score is Scorer{}.Score with the default window.
func Score(wanted model.WantedItem, candidate model.CandidateRecord) float64 {
	return Scorer{}.Score(wanted, candidate)
}

// Score returns a confidence in [0,1]. It is pure and deterministic.
func (s Scorer) Score(wanted model.WantedItem, candidate model.CandidateRecord) float64 {
	window := s.DurationWindow
	if window <= 0 {
		window = DefaultDurationWindow
	}

	title := TitleScore(wanted, candidate)
	artist := ArtistScore(wanted, candidate)

	var base float64
	if wanted.HasDuration() && candidate.HasDuration() {
		delta := math.Abs(float64(wanted.DurationSeconds - candidate.DurationSeconds))
		duration := math.Max(0, 1-delta/window)
		w := WeightsWithDuration
		base = w.Title*title + w.Artist*artist + w.Duration*duration
	} else {
		w := WeightsWithoutDuration
		base = w.Title*title + w.Artist*artist
	}

	if id := strings.ToLower(strings.TrimSpace(wanted.ExternalID)); id != "" {
		hay := strings.ToLower(strings.Join([]string{candidate.Title, candidate.Channel, candidate.Uploader}, " "))
		if strings.Contains(hay, id) {
			base += ExternalIDBonus
		}
	}
	return clamp(base)
}

// TitleScore is the similarity of the normalized titles.
func TitleScore(wanted model.WantedItem, candidate model.CandidateRecord) float64 {
	return textutil.Similarity(wanted.Title, candidate.Title)
}

// ArtistScore is the best similarity or containment of the wanted artist
// against the candidate's channel, uploader and title. The title is included
// to catch "Artist - Title" uploads on unrelated channels.
func ArtistScore(wanted model.WantedItem, candidate model.CandidateRecord) float64 {
	if textutil.NormalizeForMatch(wanted.Artist) == "" {
		return 0
	}
	best := 0.0
	for _, field := range []string{candidate.Channel, candidate.Uploader, candidate.Title} {
		best = math.Max(best, textutil.Similarity(wanted.Artist, field))
		best = math.Max(best, textutil.Contains(field, wanted.Artist))
	}
	return best
}

// IsLowConfidence reports whether score falls below threshold. A non-positive
// threshold uses DefaultLowConfidence.
func IsLowConfidence(score, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultLowConfidence
	}
	return score < threshold
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
