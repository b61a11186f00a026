package campo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/campolab/campo"
	"github.com/campolab/campo/mock"
	"github.com/stretchr/testify/assert"
)

func TestCanView(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	viewer := campo.User{Id: 1, AuthToken: "tok"}
	profile := campo.ExtendedProfile{Id: 2, SocialId: 77}

	t.Run("delegates the decision", func(t *testing.T) {
		var gotToken string
		var gotEntity int64
		permissions := campo.Permissions{Social: mock.SocialClient{
			CanReadFn: func(ctx context.Context, authToken string, entityId int64) (bool, error) {
				gotToken, gotEntity = authToken, entityId
				return true, nil
			},
		}}

		allowed, err := permissions.CanView(ctx, viewer, profile)
		assert.NoError(err)
		assert.True(allowed)
		assert.Equal("tok", gotToken)
		assert.Equal(int64(77), gotEntity)
	})

	t.Run("failure is never an implicit allow", func(t *testing.T) {
		permissions := campo.Permissions{Social: mock.SocialClient{
			CanReadFn: func(ctx context.Context, authToken string, entityId int64) (bool, error) {
				return false, errors.New("engine down")
			},
		}}

		allowed, err := permissions.CanView(ctx, viewer, profile)
		assert.ErrorIs(err, campo.ErrSocialGraph)
		assert.False(allowed)
	})
}

func TestFilterViewable(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	viewer := campo.User{Id: 1, AuthToken: "tok"}

	profiles := []campo.ExtendedProfile{
		{Id: 1, SocialId: 10},
		{Id: 2, SocialId: 11},
		{Id: 3, SocialId: 12},
	}
	permissions := campo.Permissions{Social: mock.SocialClient{
		CanReadFn: func(ctx context.Context, authToken string, entityId int64) (bool, error) {
			switch entityId {
			case 10:
				return true, nil
			case 11:
				return false, nil
			default:
				// failed check denies this one profile only
				return false, errors.New("engine down")
			}
		},
	}}

	visible := permissions.FilterViewable(ctx, viewer, profiles)
	if assert.Equal(1, len(visible)) {
		assert.Equal(int64(1), visible[0].Id)
	}
}
