package mock

import (
	"context"

	"github.com/campolab/campo"
)

// ProfileStore delegates every call to the matching function field.
// Tests set only the fields they expect to be hit.
type ProfileStore struct {
	BasicProfilesByFullNameFn func(ctx context.Context, pattern string) ([]campo.BasicProfile, error)
	AllBasicProfilesFn        func(ctx context.Context) ([]campo.BasicProfile, error)
	BasicProfilesByUserIdsFn  func(ctx context.Context, userIds []string) ([]campo.BasicProfile, error)
	BasicProfileByUserIdFn    func(ctx context.Context, userId string) (*campo.BasicProfile, error)
	StoreBasicProfileFn       func(ctx context.Context, profile campo.BasicProfile) error
	UpdateBasicProfileFn      func(ctx context.Context, profile campo.BasicProfile) error
	DeleteBasicProfileByUserIdFn func(ctx context.Context, userId string) error

	ExtendedProfileFn           func(ctx context.Context, userId, appId, profileId string) (*campo.ExtendedProfile, error)
	ExtendedProfileByIdFn       func(ctx context.Context, id int64) (*campo.ExtendedProfile, error)
	ExtendedProfileByEntityIdFn func(ctx context.Context, entityId int64, appId, profileId string) (*campo.ExtendedProfile, error)
	ExtendedProfilesByUserFn    func(ctx context.Context, userId string) ([]campo.ExtendedProfile, error)
	ExtendedProfilesByUserAppFn func(ctx context.Context, userId, appId string) ([]campo.ExtendedProfile, error)
	ExtendedProfilesByAttributesFn func(ctx context.Context, appId, profileId string,
		attrs map[string]interface{}) ([]campo.ExtendedProfile, error)
	StoreExtendedProfileFn       func(ctx context.Context, profile campo.ExtendedProfile) error
	UpdateExtendedProfileFn      func(ctx context.Context, profile campo.ExtendedProfile) error
	DeleteExtendedProfileByKeyFn func(ctx context.Context, userId, appId, profileId string) error
	DeleteExtendedProfileByIdFn  func(ctx context.Context, id int64) error
}

func (s ProfileStore) BasicProfilesByFullName(ctx context.Context, pattern string) ([]campo.BasicProfile, error) {
	return s.BasicProfilesByFullNameFn(ctx, pattern)
}

func (s ProfileStore) AllBasicProfiles(ctx context.Context) ([]campo.BasicProfile, error) {
	return s.AllBasicProfilesFn(ctx)
}

func (s ProfileStore) BasicProfilesByUserIds(ctx context.Context, userIds []string) ([]campo.BasicProfile, error) {
	return s.BasicProfilesByUserIdsFn(ctx, userIds)
}

func (s ProfileStore) BasicProfileByUserId(ctx context.Context, userId string) (*campo.BasicProfile, error) {
	return s.BasicProfileByUserIdFn(ctx, userId)
}

func (s ProfileStore) StoreBasicProfile(ctx context.Context, profile campo.BasicProfile) error {
	return s.StoreBasicProfileFn(ctx, profile)
}

func (s ProfileStore) UpdateBasicProfile(ctx context.Context, profile campo.BasicProfile) error {
	return s.UpdateBasicProfileFn(ctx, profile)
}

func (s ProfileStore) DeleteBasicProfileByUserId(ctx context.Context, userId string) error {
	return s.DeleteBasicProfileByUserIdFn(ctx, userId)
}

func (s ProfileStore) ExtendedProfile(ctx context.Context, userId, appId, profileId string) (*campo.ExtendedProfile, error) {
	return s.ExtendedProfileFn(ctx, userId, appId, profileId)
}

func (s ProfileStore) ExtendedProfileById(ctx context.Context, id int64) (*campo.ExtendedProfile, error) {
	return s.ExtendedProfileByIdFn(ctx, id)
}

func (s ProfileStore) ExtendedProfileByEntityId(ctx context.Context, entityId int64, appId, profileId string) (*campo.ExtendedProfile, error) {
	return s.ExtendedProfileByEntityIdFn(ctx, entityId, appId, profileId)
}

func (s ProfileStore) ExtendedProfilesByUser(ctx context.Context, userId string) ([]campo.ExtendedProfile, error) {
	return s.ExtendedProfilesByUserFn(ctx, userId)
}

func (s ProfileStore) ExtendedProfilesByUserApp(ctx context.Context, userId, appId string) ([]campo.ExtendedProfile, error) {
	return s.ExtendedProfilesByUserAppFn(ctx, userId, appId)
}

func (s ProfileStore) ExtendedProfilesByAttributes(ctx context.Context, appId, profileId string,
	attrs map[string]interface{}) ([]campo.ExtendedProfile, error) {
	return s.ExtendedProfilesByAttributesFn(ctx, appId, profileId, attrs)
}

func (s ProfileStore) StoreExtendedProfile(ctx context.Context, profile campo.ExtendedProfile) error {
	return s.StoreExtendedProfileFn(ctx, profile)
}

func (s ProfileStore) UpdateExtendedProfile(ctx context.Context, profile campo.ExtendedProfile) error {
	return s.UpdateExtendedProfileFn(ctx, profile)
}

func (s ProfileStore) DeleteExtendedProfileByKey(ctx context.Context, userId, appId, profileId string) error {
	return s.DeleteExtendedProfileByKeyFn(ctx, userId, appId, profileId)
}

func (s ProfileStore) DeleteExtendedProfileById(ctx context.Context, id int64) error {
	return s.DeleteExtendedProfileByIdFn(ctx, id)
}
