package mock

import (
	"context"

	"github.com/campolab/campo"
)

type ActivityStore struct {
	AddLogFn func(ctx context.Context, userId campo.UserId, activity campo.Activity) error

	ByUserIdFn func(ctx context.Context, userId campo.UserId, beforeId int64, limit int32) ([]campo.ActivityLog, error)
}

func (s ActivityStore) AddLog(ctx context.Context, userId campo.UserId, activity campo.Activity) error {
	return s.AddLogFn(ctx, userId, activity)
}

func (s ActivityStore) ByUserId(ctx context.Context, userId campo.UserId, beforeId int64, limit int32) ([]campo.ActivityLog, error) {
	return s.ByUserIdFn(ctx, userId, beforeId, limit)
}
