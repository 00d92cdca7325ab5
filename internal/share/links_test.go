package share

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/route"
)

const demoHostID = "550e8400-e29b-41d4-a716-446655440000"

func TestShortPath(t *testing.T) {
	tests := []struct {
		audience model.Audience
		want     string
	}{
		{model.AudienceOwner, "/s/nllvk0/owner"},
		{model.AudienceGuest, "/s/nllvk0/guest"},
		{model.AudienceStaff, "/s/nllvk0/staff"},
		{model.AudienceHostAI, "/s/hostai"},
	}
	for _, tt := range tests {
		t.Run(string(tt.audience), func(t *testing.T) {
			assert.Equal(t, tt.want, ShortPath(demoHostID, tt.audience))
		})
	}
}

func TestShortPathNeverLeaksIdentifier(t *testing.T) {
	for _, a := range model.Audiences {
		assert.NotContains(t, ShortPath(demoHostID, a), demoHostID)
	}
}

func TestDevPath(t *testing.T) {
	assert.Equal(t, "/s/"+demoHostID+"/staff", DevPath(demoHostID, model.AudienceStaff))
	assert.Equal(t, BrandPath, DevPath(demoHostID, model.AudienceHostAI))
}

func TestCustomPathListsSlidesInStoryOrder(t *testing.T) {
	enabled := route.EnabledSet{
		model.SlideOutro:     true,
		model.SlideIntro:     true,
		model.SlideDiscovery: true, // not part of the guest story
		model.SlideStats:     true,
	}
	got := CustomPath(demoHostID, model.AudienceGuest, enabled)
	assert.Equal(t, "/s/nllvk0/guest?slides=intro,stats,outro", got)
}

func TestCustomPathRoundTrip(t *testing.T) {
	enabled := route.AllEnabled()
	enabled[model.SlideMap] = false
	enabled[model.SlideSeasons] = false

	for _, a := range model.Audiences {
		t.Run(string(a), func(t *testing.T) {
			u, err := url.Parse(CustomPath(demoHostID, a, enabled))
			require.NoError(t, err)
			q := ParseQuery(u.Query())
			base := route.BaseSequence(a)
			assert.Equal(t, route.EffectiveSequence(base, enabled), q.Slides(a))
		})
	}
}

func TestCustomPathAllDisabled(t *testing.T) {
	got := CustomPath(demoHostID, model.AudienceOwner, route.EnabledSet{})
	assert.Equal(t, "/s/nllvk0/owner?slides=", got)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Empty(t, ParseQuery(u.Query()).Slides(model.AudienceOwner))
}

func TestPersonalPaths(t *testing.T) {
	assert.Equal(t, "/s/nllvk0/guest?g=4uf0fg", GuestPath("nllvk0", "jordan.rivera@email.com"))
	assert.Equal(t, "/s/nllvk0/staff?s=lzj3hl", StaffPath("nllvk0", "elena.martinez@company.com"))
	assert.False(t, strings.Contains(GuestPath("nllvk0", "jordan.rivera@email.com"), "@"))
}

func TestLinksFor(t *testing.T) {
	links := LinksFor(demoHostID, route.AllEnabled())
	require.Len(t, links, len(model.Audiences))
	assert.Equal(t, model.AudienceOwner, links[0].Audience)
	assert.Equal(t, "/s/nllvk0/owner", links[0].Short)
	assert.Equal(t, "/s/nllvk0/owner?slides=intro,map,discovery,stats,seasons,review,outro", links[0].Custom)
	assert.Equal(t, "/s/hostai", links[3].Short)
	assert.Equal(t, "/s/hostai?slides=intro,stats,map,review,outro", links[3].Custom)
}
