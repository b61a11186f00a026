package social_test

import (
	"context"
	"testing"

	"github.com/campolab/campo"
	"github.com/campolab/campo/social"
	"github.com/stretchr/testify/assert"
)

func TestRestClientHonorsCancelledContext(t *testing.T) {
	client := &social.RestClient{BaseUrl: "http://127.0.0.1:1"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CanRead(ctx, "tok", 7)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = client.CreateEntity(ctx, 1, "profile", "profileId:prefs", nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = client.SharedEntities(ctx, campo.SharedQuery{ActorId: 1})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = client.UserByToken(ctx, "tok")
	assert.ErrorIs(t, err, context.Canceled)
}
