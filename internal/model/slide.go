package model

// SlideKind is one stage of the narrative.  Not every kind appears for every
// audience; the per-audience order lives in the route package.
type SlideKind string

const (
	SlideIntro     SlideKind = "INTRO"
	SlideMap       SlideKind = "MAP"
	SlideDiscovery SlideKind = "DISCOVERY"
	SlideStats     SlideKind = "STATS"
	SlideSeasons   SlideKind = "SEASONS"
	SlideReview    SlideKind = "REVIEW"
	SlideOutro     SlideKind = "OUTRO"
)

// SlideKinds lists every slide kind in canonical (owner story) order.
var SlideKinds = []SlideKind{
	SlideIntro,
	SlideMap,
	SlideDiscovery,
	SlideStats,
	SlideSeasons,
	SlideReview,
	SlideOutro,
}

// Valid reports whether k is a known slide kind.
func (k SlideKind) Valid() bool {
	for _, s := range SlideKinds {
		if s == k {
			return true
		}
	}
	return false
}

// Title is the short label the admin controls show for a slide.
func (k SlideKind) Title() string {
	switch k {
	case SlideIntro:
		return "Intro"
	case SlideMap:
		return "Map"
	case SlideDiscovery:
		return "Discovery"
	case SlideStats:
		return "Stats"
	case SlideSeasons:
		return "Seasons"
	case SlideReview:
		return "Review"
	case SlideOutro:
		return "Outro"
	}
	return string(k)
}

// MapViewMode selects how the MAP slide renders guest origins.
type MapViewMode string

const (
	MapViewGlobe MapViewMode = "GLOBE"
	MapViewFlat  MapViewMode = "MAP"
	MapViewLocal MapViewMode = "LOCAL"
)

// Valid reports whether m is a known map view mode.
func (m MapViewMode) Valid() bool {
	return m == MapViewGlobe || m == MapViewFlat || m == MapViewLocal
}
