package model

// Audience is the viewer persona a story is rendered for.  It decides which
// slide kinds appear, in what order, and which copy variant each slide uses.
type Audience string

const (
	AudienceOwner  Audience = "OWNER"  // property owner / manager
	AudienceGuest  Audience = "GUEST"  // a guest who stayed at the property
	AudienceStaff  Audience = "STAFF"  // cleaning and maintenance staff
	AudienceHostAI Audience = "HOSTAI" // platform brand view, not host scoped
)

// Audiences lists every audience in the order the admin controls show them.
var Audiences = []Audience{AudienceOwner, AudienceGuest, AudienceStaff, AudienceHostAI}

// Valid reports whether a is one of the known audiences.
func (a Audience) Valid() bool {
	switch a {
	case AudienceOwner, AudienceGuest, AudienceStaff, AudienceHostAI:
		return true
	}
	return false
}

// HostScoped is false only for the brand audience, whose story is the same
// for every host.
func (a Audience) HostScoped() bool {
	return a != AudienceHostAI
}
