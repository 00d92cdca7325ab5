package route

import (
	"strings"

	"github.com/iliyamo/wrapped-story/internal/model"
)

// EnabledSet marks which slide kinds a viewer or admin has switched on.  A
// kind missing from the map counts as disabled; use AllEnabled for the
// default.
type EnabledSet map[model.SlideKind]bool

// AllEnabled returns a set with every slide kind switched on.
func AllEnabled() EnabledSet {
	s := make(EnabledSet, len(model.SlideKinds))
	for _, k := range model.SlideKinds {
		s[k] = true
	}
	return s
}

// Clone returns an independent copy of s.
func (s EnabledSet) Clone() EnabledSet {
	out := make(EnabledSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// EffectiveSequence drops disabled kinds from base and keeps the relative
// order of the rest.  It never reorders or adds slides.  When everything is
// disabled the result is an empty slice; playback treats that as the
// "nothing to show" state.
func EffectiveSequence(base []model.SlideKind, enabled EnabledSet) []model.SlideKind {
	out := make([]model.SlideKind, 0, len(base))
	for _, k := range base {
		if enabled[k] {
			out = append(out, k)
		}
	}
	return out
}

// ParseSlideList turns a comma-separated ?slides= value into an EnabledSet.
// Listed kinds are enabled, everything else is disabled.  Unknown slugs are
// ignored, so an empty or all-unknown list disables every slide.
func ParseSlideList(csv string) EnabledSet {
	s := make(EnabledSet, len(model.SlideKinds))
	for _, k := range model.SlideKinds {
		s[k] = false
	}
	for _, part := range strings.Split(csv, ",") {
		if k, ok := SlideForSlug(part); ok {
			s[k] = true
		}
	}
	return s
}

// FormatSlideList renders the enabled kinds of base as a lowercase,
// comma-joined list in base order.  It is the inverse of ParseSlideList for
// any set restricted to base.
func FormatSlideList(base []model.SlideKind, enabled EnabledSet) string {
	seq := EffectiveSequence(base, enabled)
	slugs := make([]string, len(seq))
	for i, k := range seq {
		slugs[i] = SlideSlug(k)
	}
	return strings.Join(slugs, ",")
}
