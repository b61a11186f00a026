package rest

import (
	"fmt"
	"strconv"

	"github.com/campolab/campo"
	"github.com/gofiber/fiber/v2"
)

const activityPageLimit = 50

type ActivityController struct {
	Store campo.ActivityStore
}

func (c *ActivityController) InstallTo(requestAuthorizer fiber.Handler, app *fiber.App) {
	app.Get("/activities", combineHandlers(requestAuthorizer, c.serveLastActivity))
}

func (c *ActivityController) serveLastActivity(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	beforeId := int64(-1)
	if raw := ctx.Query("beforeId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid before id")
		}
		beforeId = parsed
	}

	logs, err := c.Store.ByUserId(ctx.Context(), user.Id, beforeId, activityPageLimit)
	if err != nil {
		return fmt.Errorf("get logs by user id: %w", err)
	}

	type Log struct {
		Id        int64                  `json:"id"`
		CreatedAt int64                  `json:"createdAt"`
		Name      string                 `json:"name"`
		Data      map[string]interface{} `json:"data,omitempty"`
	}
	mapped := make([]Log, len(logs))
	for i, log := range logs {
		mapped[i] = Log{Id: log.Id, CreatedAt: log.CreatedAt.Unix(), Name: log.Name, Data: log.Data}
	}
	return ctx.JSON(mapped)
}
