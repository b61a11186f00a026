package persistent

import (
	"context"
	"testing"

	"github.com/campolab/campo"
	"github.com/campolab/campo/pgdb"
	"github.com/stretchr/testify/assert"
)

func TestActivityStore(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
		return
	}
	assert := assert.New(t)
	ctx := context.Background()
	db := pgdb.OpenTest(ctx)
	defer db.Close()

	_, err := db.NewDelete().
		Model((*ActivityLog)(nil)).
		Where("1=1").
		Exec(ctx)
	if !assert.NoError(err) {
		return
	}

	store := &ActivityStore{DB: db}

	const uid = campo.UserId(1)

	assert.NoError(store.AddLog(ctx, uid, campo.Activity{Name: "basic_profile_created"}))
	assert.NoError(store.AddLog(ctx, uid, campo.Activity{Name: "extended_profile_created",
		Data: map[string]interface{}{"profile_key": "1/cal/settings"}}))

	logs, err := store.ByUserId(ctx, uid, -1, 100)
	if !assert.NoError(err) {
		return
	}
	if !assert.Equal(2, len(logs)) {
		return
	}
	assert.Equal("extended_profile_created", logs[0].Name)
	assert.Equal(map[string]interface{}{"profile_key": "1/cal/settings"}, logs[0].Data)
	assert.Equal("basic_profile_created", logs[1].Name)

	older, err := store.ByUserId(ctx, uid, logs[0].Id, 100)
	if assert.NoError(err) {
		assert.Equal(1, len(older))
	}
}
