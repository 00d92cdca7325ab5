package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/wrapped-story/internal/model"
)

// SummaryProvider produces the one-paragraph narrative shown on the outro.
// The text may contain <strong> emphasis and nothing else.
type SummaryProvider interface {
	Summary(ctx context.Context, host *model.Host, a model.Audience) (string, error)
}

// StaticSummary writes the narrative from the host's own numbers with fixed
// per-audience wording.  It never fails.
type StaticSummary struct {
	Platform model.PlatformStats
}

func (s StaticSummary) Summary(_ context.Context, host *model.Host, a model.Audience) (string, error) {
	guests := 0
	if host != nil && host.Stats != nil {
		guests = host.Stats.TotalGuests
	}
	switch a {
	case model.AudienceGuest:
		return fmt.Sprintf("You were one of <strong>%d guests</strong> who made this year unforgettable. "+
			"We can't wait to welcome you back for another <strong>5-star stay</strong>.", guests), nil
	case model.AudienceStaff:
		return fmt.Sprintf("Your hard work delivered <strong>5-star hospitality</strong> to over "+
			"<strong>%d guests</strong>. Thank you for making every stay magical.", guests), nil
	case model.AudienceHostAI:
		return fmt.Sprintf("We powered over <strong>%d properties</strong> this year, processing "+
			"<strong>$%dM in value</strong>. Together, we are building the <strong>future of hospitality</strong>.",
			s.Platform.TotalPropertiesManaged, int64(s.Platform.PlatformGlobalRevenue/1_000_000)), nil
	}
	return fmt.Sprintf("You welcomed <strong>%d guests</strong> during a record-breaking year. "+
		"Your commitment to <strong>5-star hospitality</strong> set a new standard.", guests), nil
}
