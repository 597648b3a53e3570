package command

import (
	"strings"

	"github.com/felixgeelhaar/dictado/pkg/domain/language"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// MatchStrategy records how a reference was resolved.
type MatchStrategy string

const (
	MatchExact    MatchStrategy = "exact"
	MatchPartial  MatchStrategy = "partial"
	MatchKeyword  MatchStrategy = "keyword"
	MatchFallback MatchStrategy = "fallback"
	MatchID       MatchStrategy = "id"
)

// Confidence values per strategy. Keyword confidence scales with overlap
// between KeywordMinConfidence and KeywordMaxConfidence.
const (
	ExactConfidence      = 1.0
	PartialConfidence    = 0.8
	KeywordMinConfidence = 0.3
	KeywordMaxConfidence = 0.6
	FallbackConfidence   = 0.1
)

// ResolvedReference identifies the snapshot record a command targets.
type ResolvedReference struct {
	Kind          planning.Kind `json:"kind"`
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	MatchStrategy MatchStrategy `json:"matchStrategy"`
	Confidence    float64       `json:"confidence"`
}

// IsGuess reports whether the reference came from the first-element fallback.
func (r ResolvedReference) IsGuess() bool {
	return r.MatchStrategy == MatchFallback
}

type candidate struct {
	id    string
	title string
}

type resolveOptions struct {
	fallbackOnUnmatched bool
}

// ResolveOption tunes a single resolution.
type ResolveOption func(*resolveOptions)

// FallbackOnUnmatched makes a non-empty reference that matches nothing fall
// back to the first snapshot element. Without it only an empty reference
// falls back.
func FallbackOnUnmatched() ResolveOption {
	return func(o *resolveOptions) {
		o.fallbackOnUnmatched = true
	}
}

// ResolveProject maps reference to one of projects.
func ResolveProject(reference string, projects []planning.Project, opts ...ResolveOption) (ResolvedReference, bool) {
	candidates := make([]candidate, len(projects))
	for i, p := range projects {
		candidates[i] = candidate{id: p.ID, title: p.Title}
	}
	return resolve(planning.KindProject, reference, candidates, opts)
}

// ResolveTask maps reference to one of tasks.
func ResolveTask(reference string, tasks []planning.Task, opts ...ResolveOption) (ResolvedReference, bool) {
	candidates := make([]candidate, len(tasks))
	for i, t := range tasks {
		candidates[i] = candidate{id: t.ID, title: t.Title}
	}
	return resolve(planning.KindTask, reference, candidates, opts)
}

// ProjectByID returns a reference to the project with the given id.
func ProjectByID(id string, projects []planning.Project) (ResolvedReference, bool) {
	for _, p := range projects {
		if p.ID == id {
			return ResolvedReference{
				Kind:          planning.KindProject,
				ID:            p.ID,
				Title:         p.Title,
				MatchStrategy: MatchID,
				Confidence:    ExactConfidence,
			}, true
		}
	}
	return ResolvedReference{}, false
}

// resolve tries, in order: exact folded equality, bidirectional substring
// containment, content-token overlap, and finally the first-element fallback.
// Each step runs over the whole snapshot before the next is tried, so an
// exact match wins regardless of its position.
func resolve(kind planning.Kind, reference string, candidates []candidate, opts []ResolveOption) (ResolvedReference, bool) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(candidates) == 0 {
		return ResolvedReference{}, false
	}

	ref := language.Normalize(reference)
	found := func(c candidate, strategy MatchStrategy, confidence float64) (ResolvedReference, bool) {
		return ResolvedReference{
			Kind:          kind,
			ID:            c.id,
			Title:         c.title,
			MatchStrategy: strategy,
			Confidence:    confidence,
		}, true
	}

	if ref != "" {
		titles := make([]string, len(candidates))
		for i, c := range candidates {
			titles[i] = language.Normalize(c.title)
		}

		for i, c := range candidates {
			if titles[i] == ref {
				return found(c, MatchExact, ExactConfidence)
			}
		}

		for i, c := range candidates {
			if titles[i] == "" {
				continue
			}
			if strings.Contains(ref, titles[i]) || strings.Contains(titles[i], ref) {
				return found(c, MatchPartial, PartialConfidence)
			}
		}

		refTokens := language.ContentTokens(ref)
		if len(refTokens) > 0 {
			best, bestScore := -1, 0
			for i := range candidates {
				if score := overlap(refTokens, language.ContentTokens(titles[i])); score > bestScore {
					best, bestScore = i, score
				}
			}
			if best >= 0 {
				ratio := float64(bestScore) / float64(len(refTokens))
				confidence := KeywordMinConfidence + ratio*(KeywordMaxConfidence-KeywordMinConfidence)
				return found(candidates[best], MatchKeyword, confidence)
			}
		}

		if !o.fallbackOnUnmatched {
			return ResolvedReference{}, false
		}
	}

	return found(candidates[0], MatchFallback, FallbackConfidence)
}

// overlap counts distinct reference tokens present in title tokens.
func overlap(refTokens, titleTokens []string) int {
	set := make(map[string]bool, len(titleTokens))
	for _, t := range titleTokens {
		set[t] = true
	}
	seen := make(map[string]bool, len(refTokens))
	score := 0
	for _, t := range refTokens {
		if set[t] && !seen[t] {
			score++
			seen[t] = true
		}
	}
	return score
}
