package persistent

import (
	"context"
	"testing"

	"github.com/campolab/campo"
	"github.com/campolab/campo/pgdb"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

func openTestDb(t *testing.T, ctx context.Context) *bun.DB {
	if testing.Short() {
		t.SkipNow()
	}
	db := pgdb.OpenTest(ctx)
	t.Cleanup(func() { db.Close() })

	_, err := db.NewDelete().
		Model((*Record)(nil)).
		Where("1=1").
		ForceDelete().
		Exec(ctx)
	if err != nil {
		t.Fatalf("clear profile records: %s", err)
	}
	return db
}

func TestBasicProfileRoundtrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := &ProfileStore{DB: openTestDb(t, ctx)}

	profile := campo.BasicProfile{
		UserId:   "42",
		Name:     "Ann",
		Surname:  "Lee",
		FullName: "Ann Lee",
		SocialId: 9,
	}
	if !assert.NoError(store.StoreBasicProfile(ctx, profile)) {
		return
	}

	stored, err := store.BasicProfileByUserId(ctx, "42")
	if !assert.NoError(err) || !assert.NotNil(stored) {
		return
	}
	assert.NotZero(stored.Id)
	assert.Equal("Ann Lee", stored.FullName)
	assert.Equal(int64(9), stored.SocialId)

	stored.Name = "Anna"
	stored.FullName = "Anna Lee"
	assert.NoError(store.UpdateBasicProfile(ctx, *stored))

	updated, err := store.BasicProfileByUserId(ctx, "42")
	if !assert.NoError(err) || !assert.NotNil(updated) {
		return
	}
	assert.Equal(stored.Id, updated.Id)
	assert.Equal("Anna Lee", updated.FullName)

	missing, err := store.BasicProfileByUserId(ctx, "404")
	assert.NoError(err)
	assert.Nil(missing)
}

func TestBasicProfileSearch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := &ProfileStore{DB: openTestDb(t, ctx)}

	seed := []campo.BasicProfile{
		{UserId: "1", Name: "Ann", Surname: "Lee", FullName: "Ann Lee"},
		{UserId: "2", Name: "Bob", Surname: "Leeds", FullName: "Bob Leeds"},
		{UserId: "3", Name: "Carla", Surname: "Moro", FullName: "Carla Moro"},
	}
	for _, p := range seed {
		if !assert.NoError(store.StoreBasicProfile(ctx, p)) {
			return
		}
	}

	all, err := store.AllBasicProfiles(ctx)
	assert.NoError(err)
	assert.Equal(3, len(all))

	lee, err := store.BasicProfilesByFullName(ctx, "lee")
	assert.NoError(err)
	assert.Equal(2, len(lee))

	none, err := store.BasicProfilesByFullName(ctx, "zz")
	assert.NoError(err)
	assert.Equal(0, len(none))

	// LIKE metacharacters match literally, not as wildcards
	wild, err := store.BasicProfilesByFullName(ctx, "%")
	assert.NoError(err)
	assert.Equal(0, len(wild))

	byIds, err := store.BasicProfilesByUserIds(ctx, []string{"1", "3", "404"})
	assert.NoError(err)
	assert.Equal(2, len(byIds))

	byIds, err = store.BasicProfilesByUserIds(ctx, nil)
	assert.NoError(err)
	assert.Equal(0, len(byIds))

	assert.NoError(store.DeleteBasicProfileByUserId(ctx, "1"))
	all, err = store.AllBasicProfiles(ctx)
	assert.NoError(err)
	assert.Equal(2, len(all))
}

func TestExtendedProfileUniqueKey(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := &ProfileStore{DB: openTestDb(t, ctx)}

	profile := campo.ExtendedProfile{
		UserId:    "42",
		AppId:     "cal",
		ProfileId: "settings",
		SocialId:  1234,
		Content:   map[string]interface{}{"tz": "UTC"},
	}
	if !assert.NoError(store.StoreExtendedProfile(ctx, profile)) {
		return
	}

	// the partial unique index is the tie-break for concurrent creates
	err := store.StoreExtendedProfile(ctx, profile)
	assert.ErrorIs(err, campo.ErrExtendedProfileExists)

	stored, err := store.ExtendedProfile(ctx, "42", "cal", "settings")
	if !assert.NoError(err) || !assert.NotNil(stored) {
		return
	}
	assert.Equal("UTC", stored.Content["tz"])

	// soft delete frees the key for reuse
	assert.NoError(store.DeleteExtendedProfileByKey(ctx, "42", "cal", "settings"))
	gone, err := store.ExtendedProfile(ctx, "42", "cal", "settings")
	assert.NoError(err)
	assert.Nil(gone)

	assert.NoError(store.StoreExtendedProfile(ctx, profile))
}

func TestExtendedProfileLookups(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := &ProfileStore{DB: openTestDb(t, ctx)}

	seed := []campo.ExtendedProfile{
		{UserId: "1", AppId: "cal", ProfileId: "prefs", SocialId: 10,
			Content: map[string]interface{}{"tz": "UTC", "lang": "it"}},
		{UserId: "1", AppId: "mail", ProfileId: "prefs", SocialId: 11,
			Content: map[string]interface{}{"lang": "it"}},
		{UserId: "2", AppId: "cal", ProfileId: "prefs", SocialId: 12,
			Content: map[string]interface{}{"tz": "CET", "lang": "it"}},
	}
	for _, p := range seed {
		if !assert.NoError(store.StoreExtendedProfile(ctx, p)) {
			return
		}
	}

	byUser, err := store.ExtendedProfilesByUser(ctx, "1")
	assert.NoError(err)
	assert.Equal(2, len(byUser))

	byUserApp, err := store.ExtendedProfilesByUserApp(ctx, "1", "cal")
	assert.NoError(err)
	assert.Equal(1, len(byUserApp))

	byAttrs, err := store.ExtendedProfilesByAttributes(ctx, "cal", "prefs",
		map[string]interface{}{"lang": "it"})
	assert.NoError(err)
	assert.Equal(2, len(byAttrs))

	byAttrs, err = store.ExtendedProfilesByAttributes(ctx, "cal", "prefs",
		map[string]interface{}{"lang": "it", "tz": "CET"})
	assert.NoError(err)
	if assert.Equal(1, len(byAttrs)) {
		assert.Equal("2", byAttrs[0].UserId)
	}

	byEntity, err := store.ExtendedProfileByEntityId(ctx, 11, "", "")
	assert.NoError(err)
	if assert.NotNil(byEntity) {
		assert.Equal("mail", byEntity.AppId)
	}

	byEntity, err = store.ExtendedProfileByEntityId(ctx, 11, "cal", "")
	assert.NoError(err)
	assert.Nil(byEntity)

	byId, err := store.ExtendedProfileById(ctx, byUser[0].Id)
	assert.NoError(err)
	assert.NotNil(byId)

	assert.NoError(store.DeleteExtendedProfileById(ctx, byUser[0].Id))
	byId, err = store.ExtendedProfileById(ctx, byUser[0].Id)
	assert.NoError(err)
	assert.Nil(byId)
}

func TestExtendedProfileUpdate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := &ProfileStore{DB: openTestDb(t, ctx)}

	profile := campo.ExtendedProfile{
		UserId: "42", AppId: "cal", ProfileId: "settings",
		Content: map[string]interface{}{"tz": "UTC"},
	}
	if !assert.NoError(store.StoreExtendedProfile(ctx, profile)) {
		return
	}
	stored, err := store.ExtendedProfile(ctx, "42", "cal", "settings")
	if !assert.NoError(err) || !assert.NotNil(stored) {
		return
	}

	stored.Content = map[string]interface{}{"tz": "CET", "week_start": "monday"}
	assert.NoError(store.UpdateExtendedProfile(ctx, *stored))

	updated, err := store.ExtendedProfile(ctx, "42", "cal", "settings")
	if !assert.NoError(err) || !assert.NotNil(updated) {
		return
	}
	assert.Equal(stored.Id, updated.Id)
	assert.Equal("CET", updated.Content["tz"])
	assert.Equal("monday", updated.Content["week_start"])
}
