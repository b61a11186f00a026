package mock

import (
	"context"

	"github.com/campolab/campo"
)

type SocialClient struct {
	CreateEntityFn func(ctx context.Context, ownerSocialId int64, kind string, label string,
		meta map[string]string) (int64, error)

	DeleteEntityFn func(ctx context.Context, entityId int64) (bool, error)

	CanReadFn func(ctx context.Context, authToken string, entityId int64) (bool, error)

	SharedEntitiesFn func(ctx context.Context, query campo.SharedQuery) ([]int64, error)

	ProfileEntityTypeIdFn func(ctx context.Context, actorId int64) (int64, error)
}

func (c SocialClient) CreateEntity(ctx context.Context, ownerSocialId int64, kind string, label string,
	meta map[string]string) (int64, error) {
	return c.CreateEntityFn(ctx, ownerSocialId, kind, label, meta)
}

func (c SocialClient) DeleteEntity(ctx context.Context, entityId int64) (bool, error) {
	return c.DeleteEntityFn(ctx, entityId)
}

func (c SocialClient) CanRead(ctx context.Context, authToken string, entityId int64) (bool, error) {
	return c.CanReadFn(ctx, authToken, entityId)
}

func (c SocialClient) SharedEntities(ctx context.Context, query campo.SharedQuery) ([]int64, error) {
	return c.SharedEntitiesFn(ctx, query)
}

func (c SocialClient) ProfileEntityTypeId(ctx context.Context, actorId int64) (int64, error) {
	return c.ProfileEntityTypeIdFn(ctx, actorId)
}
