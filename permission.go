package campo

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Permissions decides extended-profile visibility by asking the social
// graph for a read-permission verdict.
type Permissions struct {
	Social SocialClient
}

// CanView reports whether the viewer may read the profile. A failed
// check is an error, never an implicit allow; callers must treat it as
// deny.
func (p *Permissions) CanView(ctx context.Context, viewer User, profile ExtendedProfile) (bool, error) {
	allowed, err := p.Social.CanRead(ctx, viewer.AuthToken, profile.SocialId)
	if err != nil {
		return false, fmt.Errorf("%w: read permission for user %d on entity %d: %v",
			ErrSocialGraph, viewer.Id, profile.SocialId, err)
	}
	return allowed, nil
}

// FilterViewable keeps only the profiles the viewer may read. Failed
// checks deny the single profile and are logged; the listing itself
// never fails because of them.
func (p *Permissions) FilterViewable(ctx context.Context, viewer User, profiles []ExtendedProfile) []ExtendedProfile {
	visible := make([]ExtendedProfile, 0, len(profiles))
	for _, profile := range profiles {
		allowed, err := p.CanView(ctx, viewer, profile)
		if err != nil {
			logrus.WithError(err).
				WithField("profile_id", profile.Id).
				Warningln("Visibility check failed, hiding profile.")
			continue
		}
		if allowed {
			visible = append(visible, profile)
		}
	}
	return visible
}
