package campo

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// SharedResolver computes which extended-profile entities the social
// graph currently shares with an actor. The "profile" entity-type id is
// resolved once and memoized for the process lifetime; concurrent first
// use may recompute it redundantly, which is harmless.
type SharedResolver struct {
	Social SocialClient
	Store  ProfileStore

	mu            sync.Mutex
	profileTypeId int64
	typeResolved  bool
}

// SharedEntityIds returns the entity ids shared with the actor. Any
// dependency failure degrades to an empty list; listings must not crash
// because the graph is down.
func (r *SharedResolver) SharedEntityIds(ctx context.Context, actorId int64) []int64 {
	typeId, err := r.profileType(ctx, actorId)
	if err != nil {
		logrus.WithError(err).
			WithField("actor_id", actorId).
			Warningln("Could not resolve profile entity type, returning no shared entities.")
		return []int64{}
	}

	ids, err := r.Social.SharedEntities(ctx, SharedQuery{
		ActorId:      actorId,
		EntityTypeId: typeId,
		Source:       SharedSourceAll,
		Scope:        SharedScopeAll,
		Status:       SharedStatusActive,
	})
	if err != nil {
		logrus.WithError(err).
			WithField("actor_id", actorId).
			Warningln("Shared entities query failed, returning no shared entities.")
		return []int64{}
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids
}

// SharedProfiles maps the shared entity ids back to stored profiles,
// optionally narrowed by app and profile type. Ids that no longer
// resolve to a live profile are dropped.
func (r *SharedResolver) SharedProfiles(ctx context.Context, actorId int64,
	appId string, profileId string) ([]ExtendedProfile, error) {
	ids := r.SharedEntityIds(ctx, actorId)
	profiles := make([]ExtendedProfile, 0, len(ids))
	for _, entityId := range ids {
		profile, err := r.Store.ExtendedProfileByEntityId(ctx, entityId, appId, profileId)
		if err != nil {
			return nil, fmt.Errorf("resolve shared entity %d: %w", entityId, err)
		}
		if profile != nil {
			profiles = append(profiles, *profile)
		}
	}
	return profiles, nil
}

func (r *SharedResolver) profileType(ctx context.Context, actorId int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.typeResolved {
		return r.profileTypeId, nil
	}
	typeId, err := r.Social.ProfileEntityTypeId(ctx, actorId)
	if err != nil {
		return 0, fmt.Errorf("%w: resolve profile entity type: %v", ErrSocialGraph, err)
	}
	r.profileTypeId = typeId
	r.typeResolved = true
	return typeId, nil
}
