package campo

import "context"

// Live-topic filters understood by the social graph. The shared-entities
// query always runs with the widest source/scope over active entities.
const (
	SharedSourceAll    = "all_known"
	SharedScopeAll     = "all"
	SharedStatusActive = "active"
)

// SharedQuery selects entities of one type currently shared with an actor.
type SharedQuery struct {
	ActorId      int64
	EntityTypeId int64
	Source       string
	Scope        string
	Status       string
}

// SocialClient is the boundary to the external social/access-control
// graph. Implementations own their timeout and retry policy.
type SocialClient interface {
	// Create an entity of the given kind owned by ownerSocialId.
	// Returns the new entity id.
	CreateEntity(ctx context.Context, ownerSocialId int64, kind string, label string,
		meta map[string]string) (int64, error)

	// Reports whether the entity was known and removed.
	DeleteEntity(ctx context.Context, entityId int64) (bool, error)

	// Single read-permission decision for the auth token on the entity.
	CanRead(ctx context.Context, authToken string, entityId int64) (bool, error)

	SharedEntities(ctx context.Context, query SharedQuery) ([]int64, error)

	// Resolve the "profile" entity-type id within the actor's
	// knowledge-base scope.
	ProfileEntityTypeId(ctx context.Context, actorId int64) (int64, error)
}
