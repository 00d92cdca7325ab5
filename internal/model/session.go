package model

import "time"

// SessionRecord is the persisted shape of a viewing session: everything
// needed to rebuild it except live playback progress.  Restored sessions
// start paused on the saved slide, or in the ended state when Ended is set.
type SessionRecord struct {
	ID            string      `json:"id"`
	HostID        string      `json:"host_id,omitempty"`
	Audience      Audience    `json:"audience"`
	Enabled       []SlideKind `json:"enabled"`
	MapMode       MapViewMode `json:"map_mode"`
	MapPlaying    bool        `json:"map_playing"`
	Index         int         `json:"index"`
	Ended         bool        `json:"ended,omitempty"`
	AdminControls bool        `json:"admin_controls"`
	GuestToken    string      `json:"guest_token,omitempty"`
	StaffToken    string      `json:"staff_token,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
