package persistent

import (
	"context"
	"fmt"
	"time"

	"github.com/campolab/campo"
	"github.com/uptrace/bun"
)

type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_log"`

	Id        int64                  `bun:",pk,autoincrement"`
	CreatedAt time.Time              `bun:",nullzero,notnull,default:current_timestamp"`
	UserId    int64                  `bun:",notnull"`
	Name      string                 `bun:",notnull"`
	Data      map[string]interface{} `bun:",nullzero"`
}

func (l *ActivityLog) ToDomain() campo.ActivityLog {
	return campo.ActivityLog{
		Id:        l.Id,
		CreatedAt: l.CreatedAt,
		UserId:    campo.UserId(l.UserId),
		Name:      l.Name,
		Data:      l.Data,
	}
}

type ActivityStore struct {
	DB *bun.DB
}

var _ campo.ActivityStore = (*ActivityStore)(nil)

func (s *ActivityStore) AddLog(ctx context.Context, userId campo.UserId, activity campo.Activity) error {
	_, err := s.DB.NewInsert().
		Model(&ActivityLog{
			UserId: int64(userId),
			Name:   activity.Name,
			Data:   activity.Data,
		}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

func (s *ActivityStore) ByUserId(ctx context.Context, userId campo.UserId, beforeId int64, limit int32) ([]campo.ActivityLog, error) {
	query := s.DB.NewSelect().
		Model((*ActivityLog)(nil)).
		Where("activity_log.user_id=?", userId).
		OrderExpr("id DESC").
		Limit(int(limit))
	if beforeId >= 0 {
		query = query.Where("id<?", beforeId)
	}

	var logs []ActivityLog
	err := query.Scan(ctx, &logs)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	ml := make([]campo.ActivityLog, len(logs))
	for i, l := range logs {
		ml[i] = l.ToDomain()
	}
	return ml, nil
}
