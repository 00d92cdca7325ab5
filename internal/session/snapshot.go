package session

import (
	"time"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/playback"
	"github.com/iliyamo/wrapped-story/internal/route"
)

// HostRef identifies the host a story is about.  Token is the short public
// identifier used in links.
type HostRef struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Viewer is the personal record a guest or staff link resolved to.  Token is
// set even when no record matched.
type Viewer struct {
	Role  string             `json:"role"`
	Token string             `json:"token"`
	Guest *model.GuestRecord `json:"guest,omitempty"`
	Staff *model.StaffRecord `json:"staff,omitempty"`
}

// ResolveViewer looks up the personal record behind a guest or staff
// token.  It returns nil unless the audience matches the token kind.
func ResolveViewer(host *model.Host, a model.Audience, guestToken, staffToken string) *Viewer {
	switch {
	case a == model.AudienceGuest && guestToken != "":
		v := &Viewer{Role: "guest", Token: guestToken}
		if host != nil && host.Stats != nil {
			if rec, ok := host.Stats.Guests[guestToken]; ok {
				v.Guest = &rec
			}
		}
		return v
	case a == model.AudienceStaff && staffToken != "":
		v := &Viewer{Role: "staff", Token: staffToken}
		if host != nil && host.Stats != nil {
			if rec, ok := host.Stats.Staff[staffToken]; ok {
				v.Staff = &rec
			}
		}
		return v
	}
	return nil
}

// Snapshot is what clients render.  It is a value copy and never changes
// after it is built.
type Snapshot struct {
	SessionID     string            `json:"session_id"`
	Version       uint64            `json:"version"`
	Audience      model.Audience    `json:"audience"`
	AudienceSlug  string            `json:"audience_slug"`
	Host          *HostRef          `json:"host,omitempty"`
	Viewer        *Viewer           `json:"viewer,omitempty"`
	Slides        []model.SlideKind `json:"slides"`
	Enabled       route.EnabledSet  `json:"enabled"`
	Current       model.SlideKind   `json:"current,omitempty"`
	Navigation    route.Navigation  `json:"navigation"`
	Playback      playback.State    `json:"playback"`
	MapMode       model.MapViewMode `json:"map_mode"`
	MapPlaying    bool              `json:"map_playing"`
	AdminControls bool              `json:"admin_controls"`
	ShortPath     string            `json:"short_path,omitempty"`
	CustomPath    string            `json:"custom_path,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Ended reports whether the story has played to its end.
func (s Snapshot) Ended() bool {
	return s.Playback.Status == playback.StatusEnded
}

// SlideSlugs returns the effective sequence as path slugs.
func (s Snapshot) SlideSlugs() []string {
	out := make([]string, len(s.Slides))
	for i, k := range s.Slides {
		out[i] = route.SlideSlug(k)
	}
	return out
}
