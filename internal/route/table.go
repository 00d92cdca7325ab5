// Package route maps URL path segments to (audience, slide) pairs, owns the
// canonical slide order for every audience and filters that order by the
// slides a viewer has enabled.
package route

import (
	"strings"

	"github.com/iliyamo/wrapped-story/internal/model"
)

// DefaultPath is where callers must send a viewer whose route did not parse.
const DefaultPath = "/owner/intro/"

var audienceSlugs = map[model.Audience]string{
	model.AudienceOwner:  "owner",
	model.AudienceGuest:  "guest",
	model.AudienceStaff:  "staff",
	model.AudienceHostAI: "hostai",
}

// Slide slugs are the lowercase kind names.  The same vocabulary is used in
// paths and in the ?slides= list, so one table serves both.
var slideSlugs = map[model.SlideKind]string{
	model.SlideIntro:     "intro",
	model.SlideMap:       "map",
	model.SlideDiscovery: "discovery",
	model.SlideStats:     "stats",
	model.SlideSeasons:   "seasons",
	model.SlideReview:    "review",
	model.SlideOutro:     "outro",
}

var (
	audienceBySlug = invert(audienceSlugs)
	slideBySlug    = invert(slideSlugs)
)

var sequences = map[model.Audience][]model.SlideKind{
	model.AudienceOwner: {
		model.SlideIntro, model.SlideMap, model.SlideDiscovery, model.SlideStats,
		model.SlideSeasons, model.SlideReview, model.SlideOutro,
	},
	model.AudienceGuest: {
		model.SlideIntro, model.SlideMap, model.SlideStats, model.SlideReview, model.SlideOutro,
	},
	model.AudienceStaff: {
		model.SlideIntro, model.SlideStats, model.SlideReview, model.SlideMap, model.SlideOutro,
	},
	// brand view: intro, scale, network, testimonial, vision
	model.AudienceHostAI: {
		model.SlideIntro, model.SlideStats, model.SlideMap, model.SlideReview, model.SlideOutro,
	},
}

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// AudienceSlug returns the path segment for a.  Unknown audiences yield "".
func AudienceSlug(a model.Audience) string {
	return audienceSlugs[a]
}

// AudienceForSlug resolves a path segment case-insensitively.
func AudienceForSlug(slug string) (model.Audience, bool) {
	a, ok := audienceBySlug[strings.ToLower(strings.TrimSpace(slug))]
	return a, ok
}

// SlideSlug returns the path segment for k.  Unknown kinds yield "".
func SlideSlug(k model.SlideKind) string {
	return slideSlugs[k]
}

// SlideForSlug resolves a slide path segment case-insensitively.
func SlideForSlug(slug string) (model.SlideKind, bool) {
	k, ok := slideBySlug[strings.ToLower(strings.TrimSpace(slug))]
	return k, ok
}

// BaseSequence returns a copy of the canonical slide order for a.  Unknown
// audiences get an empty sequence.
func BaseSequence(a model.Audience) []model.SlideKind {
	seq := sequences[a]
	out := make([]model.SlideKind, len(seq))
	copy(out, seq)
	return out
}

// Contains reports whether k is part of a's story.
func Contains(a model.Audience, k model.SlideKind) bool {
	return indexOf(sequences[a], k) >= 0
}

func indexOf(seq []model.SlideKind, k model.SlideKind) int {
	for i, s := range seq {
		if s == k {
			return i
		}
	}
	return -1
}

// SlidePath builds the canonical /{audience}/{slide} path.
func SlidePath(a model.Audience, k model.SlideKind) string {
	return "/" + AudienceSlug(a) + "/" + SlideSlug(k)
}

// Navigation describes where a slide sits in its audience's story.  Prev and
// Next are empty at the sequence boundaries.  Index is -1 when the slide is
// not part of the story.
type Navigation struct {
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

// HasPrev reports whether a previous slide exists.
func (n Navigation) HasPrev() bool { return n.Prev != "" }

// HasNext reports whether a following slide exists.
func (n Navigation) HasNext() bool { return n.Next != "" }

// Navigate locates current in a's base sequence and returns the neighbouring
// paths.
func Navigate(a model.Audience, current model.SlideKind) Navigation {
	return NavigateIn(a, sequences[a], current)
}

// NavigateIn is Navigate over an explicit (usually filtered) sequence.
func NavigateIn(a model.Audience, seq []model.SlideKind, current model.SlideKind) Navigation {
	nav := Navigation{Index: indexOf(seq, current), Total: len(seq)}
	if nav.Index < 0 {
		return nav
	}
	if nav.Index > 0 {
		nav.Prev = SlidePath(a, seq[nav.Index-1])
	}
	if nav.Index < len(seq)-1 {
		nav.Next = SlidePath(a, seq[nav.Index+1])
	}
	return nav
}

// Route is the result of parsing an /{audience}/{slide} pair.  Audience and
// Slide are set whenever their slug resolved, even if the pair is invalid.
type Route struct {
	Audience model.Audience  `json:"audience,omitempty"`
	Slide    model.SlideKind `json:"slide,omitempty"`
	Valid    bool            `json:"valid"`
}

// Parse resolves both slugs.  The route is valid only when both resolve and
// the slide belongs to that audience's story; a known slide outside the
// story (seasons for guests) is invalid.  Callers redirect invalid routes to
// DefaultPath.
func Parse(audienceSlug, slideSlug string) Route {
	var r Route
	a, aok := AudienceForSlug(audienceSlug)
	if aok {
		r.Audience = a
	}
	k, kok := SlideForSlug(slideSlug)
	if kok {
		r.Slide = k
	}
	r.Valid = aok && kok && Contains(a, k)
	return r
}

// Path is one statically known (audience, slide) pair.
type Path struct {
	Audience string `json:"audience"`
	Slide    string `json:"slide"`
}

// StaticPaths lists every valid (audience, slide) pair in audience then
// story order.
func StaticPaths() []Path {
	var out []Path
	for _, a := range model.Audiences {
		for _, k := range sequences[a] {
			out = append(out, Path{Audience: AudienceSlug(a), Slide: SlideSlug(k)})
		}
	}
	return out
}
