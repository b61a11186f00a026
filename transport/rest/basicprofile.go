package rest

import (
	"fmt"
	"strings"

	"github.com/campolab/campo"
	"github.com/gofiber/fiber/v2"
)

type BasicProfileController struct {
	Manager *campo.ProfileManager
	Store   campo.ProfileStore
}

func (c *BasicProfileController) InstallTo(requestAuthorizer fiber.Handler, app *fiber.App) {
	app.Get("/basicprofile/me", combineHandlers(requestAuthorizer, c.serveOwnProfile))
	app.Delete("/basicprofile/me", combineHandlers(requestAuthorizer, c.serveDeleteOwnProfile))
	app.Get("/basicprofile/all", combineHandlers(requestAuthorizer, c.serveAllProfiles))
	app.Get("/basicprofile/profiles", combineHandlers(requestAuthorizer, c.serveProfilesByUserIds))
	app.Get("/basicprofile/:user_id", combineHandlers(requestAuthorizer, c.serveProfile))
}

func (c *BasicProfileController) serveOwnProfile(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	profile, err := c.Manager.GetOrCreateBasicProfile(ctx.Context(), user)
	if err != nil {
		return fmt.Errorf("get or create basic profile: %w", err)
	}
	if profile == nil {
		return fiber.NewError(fiber.StatusNotFound, "profile not found")
	}
	return ctx.JSON(mapBasicProfile(*profile))
}

func (c *BasicProfileController) serveDeleteOwnProfile(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if err := c.Manager.DeleteBasicProfile(ctx.Context(), user); err != nil {
		return fmt.Errorf("delete basic profile: %w", err)
	}
	return nil
}

// serveAllProfiles lists every basic profile. An optional filter query
// narrows the listing by a case-insensitive full-name substring.
func (c *BasicProfileController) serveAllProfiles(ctx *fiber.Ctx) error {
	filter := ctx.Query("filter")

	var profiles []campo.BasicProfile
	var err error
	if filter == "" {
		profiles, err = c.Store.AllBasicProfiles(ctx.Context())
	} else {
		profiles, err = c.Store.BasicProfilesByFullName(ctx.Context(), filter)
	}
	if err != nil {
		return fmt.Errorf("list basic profiles: %w", err)
	}
	return ctx.JSON(mapBasicProfiles(profiles))
}

func (c *BasicProfileController) serveProfilesByUserIds(ctx *fiber.Ctx) error {
	raw := ctx.Query("userIds")
	if raw == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no user ids")
	}
	userIds := strings.Split(raw, ",")

	profiles, err := c.Store.BasicProfilesByUserIds(ctx.Context(), userIds)
	if err != nil {
		return fmt.Errorf("get basic profiles by user ids: %w", err)
	}
	return ctx.JSON(mapBasicProfiles(profiles))
}

func (c *BasicProfileController) serveProfile(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	if userId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no user id")
	}

	profile, err := c.Store.BasicProfileByUserId(ctx.Context(), userId)
	if err != nil {
		return fmt.Errorf("get basic profile by user id: %w", err)
	}
	if profile == nil {
		return fiber.NewError(fiber.StatusNotFound, "profile not found")
	}
	return ctx.JSON(mapBasicProfile(*profile))
}

type BasicProfileResponse struct {
	Id         int64  `json:"id"`
	UserId     string `json:"userId"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	FullName   string `json:"fullName"`
	SocialId   int64  `json:"socialId"`
	UpdateTime int64  `json:"updateTime"`
}

func mapBasicProfile(profile campo.BasicProfile) BasicProfileResponse {
	return BasicProfileResponse{
		Id:         profile.Id,
		UserId:     profile.UserId,
		Name:       profile.Name,
		Surname:    profile.Surname,
		FullName:   profile.FullName,
		SocialId:   profile.SocialId,
		UpdateTime: profile.UpdateTime.Unix(),
	}
}

func mapBasicProfiles(profiles []campo.BasicProfile) []BasicProfileResponse {
	mapped := make([]BasicProfileResponse, len(profiles))
	for i, profile := range profiles {
		mapped[i] = mapBasicProfile(profile)
	}
	return mapped
}
