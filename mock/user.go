package mock

import (
	"context"

	"github.com/campolab/campo"
)

type UserResolver struct {
	UserByTokenFn func(ctx context.Context, token string) (campo.User, error)
}

func (r UserResolver) UserByToken(ctx context.Context, token string) (campo.User, error) {
	return r.UserByTokenFn(ctx, token)
}
