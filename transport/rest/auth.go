package rest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/campolab/campo"
	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

// RequestAuthorizer resolves the bearer token into a user and stores it
// in the request locals for the guarded handlers.
func RequestAuthorizer(users campo.UserResolver) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		auth := ctx.Get(fiber.HeaderAuthorization)
		if auth == "" {
			return fiber.ErrUnauthorized
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			return fiber.NewError(fiber.ErrBadRequest.Code, "invalid auth type")
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		user, err := users.UserByToken(ctx.Context(), token)
		if err != nil {
			if errors.Is(err, campo.ErrUserNotFound) {
				return fiber.ErrUnauthorized
			} else {
				return fmt.Errorf("resolve user by token: %w", err)
			}
		}

		requestLog(ctx).
			WithField("user_id", user.Id).
			Infoln("Authorized access.")

		ctx.Locals(userLocalsKey, user)
		return nil
	}
}

func requestUser(ctx *fiber.Ctx) (campo.User, bool) {
	user, ok := ctx.Locals(userLocalsKey).(campo.User)
	return user, ok
}
