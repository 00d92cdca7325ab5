package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/utils"
)

// HostProvider is the read-only host directory the story service needs.
// Both the MySQL HostRepo and the seeded StaticHostRepo implement it.
type HostProvider interface {
	// List returns every host, oldest first.
	List(ctx context.Context) ([]*model.Host, error)
	// Get looks a host up by its full identifier.
	Get(ctx context.Context, id string) (*model.Host, error)
	// FindByToken looks a host up by its 6-character share token.  When
	// several hosts share a token the oldest one wins.
	FindByToken(ctx context.Context, token string) (*model.Host, error)
	// Search matches q against host names and locations, case-insensitively.
	Search(ctx context.Context, q string) ([]*model.Host, error)
	// Platform returns the brand-level statistics for the HOSTAI story.
	Platform(ctx context.Context) (*model.PlatformStats, error)
}

// ResolveHost accepts either a share token or a raw identifier, the two
// forms a host can take in a /s/ path.  Tokens are tried first.
func ResolveHost(ctx context.Context, p HostProvider, key string) (*model.Host, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrHostNotFound
	}
	if len(key) == utils.HostTokenLength {
		h, err := p.FindByToken(ctx, strings.ToLower(key))
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, ErrHostNotFound) {
			return nil, err
		}
	}
	return p.Get(ctx, key)
}

// DefaultHost returns the oldest host, the one a story shows when no host
// was picked.
func DefaultHost(ctx context.Context, p HostProvider) (*model.Host, error) {
	hosts, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return nil, ErrHostNotFound
	}
	return hosts[0], nil
}
