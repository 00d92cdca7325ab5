package share

import (
	"net/url"
	"strings"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/route"
)

// Query is what a story URL's query string asks for.
type Query struct {
	// Enabled is nil when the URL carried no slides parameter, meaning
	// every slide is on.
	Enabled route.EnabledSet `json:"-"`
	// View is the audience picked by the legacy ?view= parameter, or ""
	// when it is absent or unknown.
	View       model.Audience `json:"view,omitempty"`
	GuestToken string         `json:"guest_token,omitempty"`
	StaffToken string         `json:"staff_token,omitempty"`
	// AdminControls is false for legacy ?view= embeds, which show the story
	// without the admin bar.
	AdminControls bool `json:"admin_controls"`
}

// ParseQuery reads the story parameters from v.  Unknown values are ignored
// rather than rejected.
func ParseQuery(v url.Values) Query {
	q := Query{AdminControls: true}
	if _, ok := v[ParamSlides]; ok {
		q.Enabled = route.ParseSlideList(v.Get(ParamSlides))
	}
	if raw := v.Get(ParamView); raw != "" {
		q.AdminControls = false
		if a, ok := route.AudienceForSlug(raw); ok {
			q.View = a
		}
	}
	q.GuestToken = strings.TrimSpace(v.Get(ParamGuest))
	q.StaffToken = strings.TrimSpace(v.Get(ParamStaff))
	return q
}

// EnabledOrAll returns the requested enabled set, or every slide when the
// URL did not restrict them.
func (q Query) EnabledOrAll() route.EnabledSet {
	if q.Enabled == nil {
		return route.AllEnabled()
	}
	return q.Enabled.Clone()
}

// Slides is the effective sequence the URL asks for under audience a.
func (q Query) Slides(a model.Audience) []model.SlideKind {
	return route.EffectiveSequence(route.BaseSequence(a), q.EnabledOrAll())
}
