package rest

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/campolab/campo"
	"github.com/gofiber/fiber/v2"
)

type ExtendedProfileController struct {
	Manager     *campo.ProfileManager
	Store       campo.ProfileStore
	Permissions *campo.Permissions
	Shared      *campo.SharedResolver
}

func (c *ExtendedProfileController) InstallTo(requestAuthorizer fiber.Handler, app *fiber.App) {
	authorized := func(handler fiber.Handler) fiber.Handler {
		return combineHandlers(requestAuthorizer, handler)
	}

	app.Get("/extprofile/me", authorized(c.serveOwnProfiles))
	app.Get("/extprofile/me/:app_id", authorized(c.serveOwnAppProfiles))
	app.Get("/extprofile/me/:app_id/:profile_id", authorized(c.serveOwnProfile))
	app.Post("/extprofile/me/:app_id/:profile_id", authorized(c.serveCreateProfile))
	app.Put("/extprofile/me/:app_id/:profile_id", authorized(c.serveUpdateProfile))
	app.Delete("/extprofile/me/:app_id/:profile_id", authorized(c.serveDeleteProfile))

	app.Get("/extprofile/app/:app_id/:user_id", authorized(c.serveUserAppProfiles))
	app.Get("/extprofile/app/:app_id/:user_id/:profile_id", authorized(c.serveUserProfile))

	app.Post("/extprofile/all/:app_id/:profile_id", authorized(c.serveProfileSearch))

	app.Get("/extprofile/shared", authorized(c.serveSharedProfiles))
	app.Get("/extprofile/shared/:app_id", authorized(c.serveSharedProfiles))
	app.Get("/extprofile/shared/:app_id/:profile_id", authorized(c.serveSharedProfiles))
}

func (c *ExtendedProfileController) serveOwnProfiles(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	profiles, err := c.Store.ExtendedProfilesByUser(ctx.Context(), ownerId(user))
	if err != nil {
		return fmt.Errorf("get extended profiles by user: %w", err)
	}
	return ctx.JSON(mapExtendedProfiles(profiles))
}

func (c *ExtendedProfileController) serveOwnAppProfiles(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	profiles, err := c.Store.ExtendedProfilesByUserApp(ctx.Context(), ownerId(user), ctx.Params("app_id"))
	if err != nil {
		return fmt.Errorf("get extended profiles by user app: %w", err)
	}
	return ctx.JSON(mapExtendedProfiles(profiles))
}

func (c *ExtendedProfileController) serveOwnProfile(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	profile, err := c.Store.ExtendedProfile(ctx.Context(),
		ownerId(user), ctx.Params("app_id"), ctx.Params("profile_id"))
	if err != nil {
		return fmt.Errorf("get extended profile: %w", err)
	}
	if profile == nil {
		return fiber.NewError(fiber.StatusNotFound, "profile not found")
	}
	return ctx.JSON(mapExtendedProfile(*profile))
}

func (c *ExtendedProfileController) serveCreateProfile(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	content, err := parseContent(ctx)
	if err != nil {
		return err
	}

	created, err := c.Manager.CreateExtendedProfile(ctx.Context(), user, campo.ExtendedProfile{
		UserId:    ownerId(user),
		AppId:     ctx.Params("app_id"),
		ProfileId: ctx.Params("profile_id"),
		Content:   content,
	})
	if err != nil {
		switch {
		case errors.Is(err, campo.ErrExtendedProfileExists):
			return fiber.NewError(fiber.StatusBadRequest, "profile already exists")
		case errors.Is(err, campo.ErrProfileMismatch):
			return fiber.ErrForbidden
		default:
			return fmt.Errorf("create extended profile: %w", err)
		}
	}
	return ctx.Status(fiber.StatusCreated).JSON(mapExtendedProfile(created))
}

func (c *ExtendedProfileController) serveUpdateProfile(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	content, err := parseContent(ctx)
	if err != nil {
		return err
	}

	updated, err := c.Manager.UpdateExtendedProfileContent(ctx.Context(),
		ownerId(user), ctx.Params("app_id"), ctx.Params("profile_id"), content)
	if err != nil {
		if errors.Is(err, campo.ErrProfileNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "profile not found")
		}
		return fmt.Errorf("update extended profile: %w", err)
	}
	return ctx.JSON(mapExtendedProfile(updated))
}

func (c *ExtendedProfileController) serveDeleteProfile(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	profile, err := c.Store.ExtendedProfile(ctx.Context(),
		ownerId(user), ctx.Params("app_id"), ctx.Params("profile_id"))
	if err != nil {
		return fmt.Errorf("get extended profile: %w", err)
	}
	if profile == nil {
		return fiber.NewError(fiber.StatusNotFound, "profile not found")
	}
	if err = c.Manager.DeleteExtendedProfile(ctx.Context(), *profile); err != nil {
		return fmt.Errorf("delete extended profile: %w", err)
	}
	return nil
}

// serveUserAppProfiles lists another user's profiles in an application,
// narrowed to the ones the social graph lets the caller read.
func (c *ExtendedProfileController) serveUserAppProfiles(ctx *fiber.Ctx) error {
	viewer, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	userId := ctx.Params("user_id")
	profiles, err := c.Store.ExtendedProfilesByUserApp(ctx.Context(), userId, ctx.Params("app_id"))
	if err != nil {
		return fmt.Errorf("get extended profiles by user app: %w", err)
	}
	if userId != ownerId(viewer) {
		profiles = c.Permissions.FilterViewable(ctx.Context(), viewer, profiles)
	}
	return ctx.JSON(mapExtendedProfiles(profiles))
}

func (c *ExtendedProfileController) serveUserProfile(ctx *fiber.Ctx) error {
	viewer, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	userId := ctx.Params("user_id")
	profile, err := c.Store.ExtendedProfile(ctx.Context(),
		userId, ctx.Params("app_id"), ctx.Params("profile_id"))
	if err != nil {
		return fmt.Errorf("get extended profile: %w", err)
	}
	if profile == nil {
		return fiber.NewError(fiber.StatusNotFound, "profile not found")
	}
	if userId != ownerId(viewer) {
		allowed, err := c.Permissions.CanView(ctx.Context(), viewer, *profile)
		if err != nil {
			return fmt.Errorf("check profile visibility: %w", err)
		}
		if !allowed {
			return fiber.ErrForbidden
		}
	}
	return ctx.JSON(mapExtendedProfile(*profile))
}

// serveProfileSearch matches profiles of a profile type by exact content
// attributes posted in the request body.
func (c *ExtendedProfileController) serveProfileSearch(ctx *fiber.Ctx) error {
	viewer, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	attrs, err := parseContent(ctx)
	if err != nil {
		return err
	}

	profiles, err := c.Store.ExtendedProfilesByAttributes(ctx.Context(),
		ctx.Params("app_id"), ctx.Params("profile_id"), attrs)
	if err != nil {
		return fmt.Errorf("search extended profiles: %w", err)
	}

	visible := make([]campo.ExtendedProfile, 0, len(profiles))
	var foreign []campo.ExtendedProfile
	for _, profile := range profiles {
		if profile.UserId == ownerId(viewer) {
			visible = append(visible, profile)
		} else {
			foreign = append(foreign, profile)
		}
	}
	visible = append(visible, c.Permissions.FilterViewable(ctx.Context(), viewer, foreign)...)
	return ctx.JSON(mapExtendedProfiles(visible))
}

func (c *ExtendedProfileController) serveSharedProfiles(ctx *fiber.Ctx) error {
	user, ok := requestUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	profiles, err := c.Shared.SharedProfiles(ctx.Context(), user.SocialId,
		ctx.Params("app_id"), ctx.Params("profile_id"))
	if err != nil {
		return fmt.Errorf("resolve shared profiles: %w", err)
	}
	return ctx.JSON(mapExtendedProfiles(profiles))
}

func ownerId(user campo.User) string {
	return strconv.FormatInt(int64(user.Id), 10)
}

func parseContent(ctx *fiber.Ctx) (map[string]interface{}, error) {
	content := map[string]interface{}{}
	if len(ctx.Body()) == 0 {
		return content, nil
	}
	if err := ctx.BodyParser(&content); err != nil {
		requestLog(ctx).WithError(err).Infoln("Invalid body.")
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	return content, nil
}

type ExtendedProfileResponse struct {
	Id         int64                  `json:"id"`
	UserId     string                 `json:"userId"`
	AppId      string                 `json:"appId"`
	ProfileId  string                 `json:"profileId"`
	SocialId   int64                  `json:"socialId"`
	Content    map[string]interface{} `json:"content,omitempty"`
	UpdateTime int64                  `json:"updateTime"`
}

func mapExtendedProfile(profile campo.ExtendedProfile) ExtendedProfileResponse {
	return ExtendedProfileResponse{
		Id:         profile.Id,
		UserId:     profile.UserId,
		AppId:      profile.AppId,
		ProfileId:  profile.ProfileId,
		SocialId:   profile.SocialId,
		Content:    profile.Content,
		UpdateTime: profile.UpdateTime.Unix(),
	}
}

func mapExtendedProfiles(profiles []campo.ExtendedProfile) []ExtendedProfileResponse {
	mapped := make([]ExtendedProfileResponse, len(profiles))
	for i, profile := range profiles {
		mapped[i] = mapExtendedProfile(profile)
	}
	return mapped
}
