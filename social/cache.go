package social

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/campolab/campo"
	"github.com/tidwall/buntdb"
)

// CachingClient memoizes the read-permission and entity-type lookups of
// the wrapped client. Entity mutations and shared-entity queries always
// go through, permission answers expire after Ttl.
type CachingClient struct {
	Inner campo.SocialClient
	Bunt  *buntdb.DB
	Ttl   time.Duration
}

var _ campo.SocialClient = (*CachingClient)(nil)

func (c *CachingClient) CreateEntity(ctx context.Context, ownerSocialId int64, kind string,
	label string, meta map[string]string) (int64, error) {
	return c.Inner.CreateEntity(ctx, ownerSocialId, kind, label, meta)
}

func (c *CachingClient) DeleteEntity(ctx context.Context, entityId int64) (bool, error) {
	return c.Inner.DeleteEntity(ctx, entityId)
}

func (c *CachingClient) SharedEntities(ctx context.Context, query campo.SharedQuery) ([]int64, error) {
	return c.Inner.SharedEntities(ctx, query)
}

func (c *CachingClient) CanRead(ctx context.Context, authToken string, entityId int64) (bool, error) {
	key := "perm:" + authToken + ":" + strconv.FormatInt(entityId, 10)
	if cached, ok, err := c.get(key); err != nil {
		return false, err
	} else if ok {
		return cached == "1", nil
	}

	allowed, err := c.Inner.CanRead(ctx, authToken, entityId)
	if err != nil {
		return false, err
	}
	value := "0"
	if allowed {
		value = "1"
	}
	if err = c.set(key, value); err != nil {
		return false, err
	}
	return allowed, nil
}

func (c *CachingClient) ProfileEntityTypeId(ctx context.Context, actorId int64) (int64, error) {
	key := "ptype:" + strconv.FormatInt(actorId, 10)
	if cached, ok, err := c.get(key); err != nil {
		return 0, err
	} else if ok {
		typeId, err := strconv.ParseInt(cached, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse cached type id: %w", err)
		}
		return typeId, nil
	}

	typeId, err := c.Inner.ProfileEntityTypeId(ctx, actorId)
	if err != nil {
		return 0, err
	}
	if err = c.set(key, strconv.FormatInt(typeId, 10)); err != nil {
		return 0, err
	}
	return typeId, nil
}

func (c *CachingClient) get(key string) (string, bool, error) {
	var value string
	err := c.Bunt.View(func(tx *buntdb.Tx) error {
		var err error
		value, err = tx.Get(key)
		return err
	})
	if err == buntdb.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("view cache: %w", err)
	}
	return value, true, nil
}

func (c *CachingClient) set(key string, value string) error {
	err := c.Bunt.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, value, &buntdb.SetOptions{Expires: true, TTL: c.Ttl})
		return err
	})
	if err != nil {
		return fmt.Errorf("update cache: %w", err)
	}
	return nil
}
