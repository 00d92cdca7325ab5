// Package share builds the short story URLs that hosts hand out and parses
// the query parameters those URLs carry.
package share

import (
	"net/url"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/route"
	"github.com/iliyamo/wrapped-story/internal/utils"
)

// BrandPath is the single, host-independent entry point of the HOSTAI story.
const BrandPath = "/s/hostai"

// Query parameter names understood by the story routes.
const (
	ParamSlides = "slides"
	ParamView   = "view"
	ParamGuest  = "g"
	ParamStaff  = "s"
)

// ShortPath is the public link for a host and audience: the host is addressed
// by its 6-character token, never by its raw identifier.
func ShortPath(hostID string, a model.Audience) string {
	if !a.HostScoped() {
		return BrandPath
	}
	return "/s/" + utils.HostToken(hostID) + "/" + route.AudienceSlug(a)
}

// DevPath is ShortPath with the raw identifier in place of the token.  It is
// only meant for local testing.
func DevPath(hostID string, a model.Audience) string {
	if !a.HostScoped() {
		return BrandPath
	}
	return "/s/" + hostID + "/" + route.AudienceSlug(a)
}

// CustomPath is ShortPath plus a ?slides= list naming the enabled slides of
// a's base sequence in story order.  Kinds outside that sequence are never
// listed.
func CustomPath(hostID string, a model.Audience, enabled route.EnabledSet) string {
	list := route.FormatSlideList(route.BaseSequence(a), enabled)
	return ShortPath(hostID, a) + "?" + ParamSlides + "=" + list
}

// GuestPath is the personal link for one guest.  The email never appears in
// the URL, only its namespaced token.
func GuestPath(hostToken, email string) string {
	v := url.Values{ParamGuest: {utils.GuestToken(email)}}
	return "/s/" + hostToken + "/" + route.AudienceSlug(model.AudienceGuest) + "?" + v.Encode()
}

// StaffPath is the personal link for one staff member.
func StaffPath(hostToken, email string) string {
	v := url.Values{ParamStaff: {utils.StaffToken(email)}}
	return "/s/" + hostToken + "/" + route.AudienceSlug(model.AudienceStaff) + "?" + v.Encode()
}

// AudienceLinks are the three share variants of one audience.
type AudienceLinks struct {
	Audience model.Audience `json:"audience"`
	Short    string         `json:"short"`
	Dev      string         `json:"dev"`
	Custom   string         `json:"custom"`
}

// LinksFor returns the share table shown in the admin controls: one row per
// audience in display order.
func LinksFor(hostID string, enabled route.EnabledSet) []AudienceLinks {
	out := make([]AudienceLinks, 0, len(model.Audiences))
	for _, a := range model.Audiences {
		out = append(out, AudienceLinks{
			Audience: a,
			Short:    ShortPath(hostID, a),
			Dev:      DevPath(hostID, a),
			Custom:   CustomPath(hostID, a, enabled),
		})
	}
	return out
}
