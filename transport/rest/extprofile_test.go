package rest

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campolab/campo"
	"github.com/campolab/campo/inmem"
	"github.com/campolab/campo/mock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func extProfileTestApp(t *testing.T, social campo.SocialClient) (*fiber.App, *inmem.ProfileStore) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	store := inmem.NewProfileStore()
	manager := &campo.ProfileManager{Store: store, Social: social}
	controller := ExtendedProfileController{
		Manager:     manager,
		Store:       store,
		Permissions: &campo.Permissions{Social: social},
		Shared:      &campo.SharedResolver{Social: social, Store: store},
	}
	users := map[string]campo.User{
		"makowka": {Id: 7, SocialId: 70, AuthToken: "makowka"},
		"wedrowycz": {Id: 8, SocialId: 80, AuthToken: "wedrowycz"},
	}
	controller.InstallTo(testAuthorizer(users), app)
	return app, store
}

func sendJson(t *testing.T, app *fiber.App, method string, url string, token string,
	body string) (int, string) {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	defer resp.Body.Close()
	respBody, err := ioutil.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp.StatusCode, string(respBody)
}

func TestExtendedProfileLifecycle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	entityDeleted := false
	social := &mock.SocialClient{
		CreateEntityFn: func(ctx context.Context, ownerSocialId int64, kind string, label string,
			meta map[string]string) (int64, error) {
			assert.EqualValues(70, ownerSocialId)
			return 1234, nil
		},
		DeleteEntityFn: func(ctx context.Context, entityId int64) (bool, error) {
			entityDeleted = true
			assert.EqualValues(1234, entityId)
			return true, nil
		},
	}
	app, store := extProfileTestApp(t, social)

	status, body := sendJson(t, app, "POST", "/extprofile/me/campuslife/card", "makowka",
		`{"color":"red"}`)
	assert.Equal(http.StatusCreated, status)
	assert.Contains(body, `"socialId":1234`)
	assert.Contains(body, `"color":"red"`)

	status, body = sendJson(t, app, "POST", "/extprofile/me/campuslife/card", "makowka",
		`{"color":"blue"}`)
	assert.Equal(http.StatusBadRequest, status)
	assert.Equal(JsonErrorMessageResponse("profile already exists"), body)

	status, body = sendJson(t, app, "GET", "/extprofile/me", "makowka", "")
	assert.Equal(http.StatusOK, status)
	assert.Contains(body, `"profileId":"card"`)

	status, body = sendJson(t, app, "GET", "/extprofile/me/campuslife/card", "makowka", "")
	assert.Equal(http.StatusOK, status)
	assert.Contains(body, `"color":"red"`)

	status, body = sendJson(t, app, "PUT", "/extprofile/me/campuslife/card", "makowka",
		`{"color":"green"}`)
	assert.Equal(http.StatusOK, status)
	assert.Contains(body, `"color":"green"`)

	updated, err := store.ExtendedProfile(ctx, "7", "campuslife", "card")
	assert.NoError(err)
	if assert.NotNil(updated) {
		assert.Equal("green", updated.Content["color"])
	}

	status, _ = sendJson(t, app, "PUT", "/extprofile/me/campuslife/missing", "makowka",
		`{"color":"green"}`)
	assert.Equal(http.StatusBadRequest, status)

	status, _ = sendJson(t, app, "DELETE", "/extprofile/me/campuslife/card", "makowka", "")
	assert.Equal(http.StatusOK, status)
	assert.True(entityDeleted)

	status, _ = sendJson(t, app, "GET", "/extprofile/me/campuslife/card", "makowka", "")
	assert.Equal(http.StatusNotFound, status)

	status, _ = sendJson(t, app, "DELETE", "/extprofile/me/campuslife/card", "makowka", "")
	assert.Equal(http.StatusNotFound, status)
}

func TestForeignExtendedProfileAccess(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	social := &mock.SocialClient{
		CanReadFn: func(ctx context.Context, authToken string, entityId int64) (bool, error) {
			return authToken == "wedrowycz" && entityId == 501, nil
		},
	}
	app, store := extProfileTestApp(t, social)

	seed := []campo.ExtendedProfile{
		{UserId: "7", AppId: "campuslife", ProfileId: "card", SocialId: 501,
			Content: map[string]interface{}{"color": "red"}},
		{UserId: "7", AppId: "campuslife", ProfileId: "badge", SocialId: 502,
			Content: map[string]interface{}{"level": "gold"}},
	}
	for _, profile := range seed {
		if !assert.NoError(store.StoreExtendedProfile(ctx, profile)) {
			t.FailNow()
		}
	}

	status, body := sendJson(t, app, "GET", "/extprofile/app/campuslife/7/card", "wedrowycz", "")
	assert.Equal(http.StatusOK, status)
	assert.Contains(body, `"color":"red"`)

	status, _ = sendJson(t, app, "GET", "/extprofile/app/campuslife/7/badge", "wedrowycz", "")
	assert.Equal(http.StatusForbidden, status)

	status, _ = sendJson(t, app, "GET", "/extprofile/app/campuslife/7/missing", "wedrowycz", "")
	assert.Equal(http.StatusNotFound, status)

	// listings keep only the readable records
	status, body = sendJson(t, app, "GET", "/extprofile/app/campuslife/7", "wedrowycz", "")
	assert.Equal(http.StatusOK, status)
	assert.Contains(body, `"profileId":"card"`)
	assert.NotContains(body, `"profileId":"badge"`)

	// the owner skips the permission check entirely
	status, body = sendJson(t, app, "GET", "/extprofile/app/campuslife/7", "makowka", "")
	assert.Equal(http.StatusOK, status)
	assert.Contains(body, `"profileId":"card"`)
	assert.Contains(body, `"profileId":"badge"`)
}

func TestExtendedProfileSearch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	social := &mock.SocialClient{
		CanReadFn: func(ctx context.Context, authToken string, entityId int64) (bool, error) {
			return entityId == 601, nil
		},
	}
	app, store := extProfileTestApp(t, social)

	seed := []campo.ExtendedProfile{
		{UserId: "7", AppId: "campuslife", ProfileId: "card", SocialId: 600,
			Content: map[string]interface{}{"city": "Trento"}},
		{UserId: "8", AppId: "campuslife", ProfileId: "card", SocialId: 601,
			Content: map[string]interface{}{"city": "Trento"}},
		{UserId: "9", AppId: "campuslife", ProfileId: "card", SocialId: 602,
			Content: map[string]interface{}{"city": "Trento"}},
		{UserId: "10", AppId: "campuslife", ProfileId: "card", SocialId: 603,
			Content: map[string]interface{}{"city": "Povo"}},
	}
	for _, profile := range seed {
		if !assert.NoError(store.StoreExtendedProfile(ctx, profile)) {
			t.FailNow()
		}
	}

	status, body := sendJson(t, app, "POST", "/extprofile/all/campuslife/card", "makowka",
		`{"city":"Trento"}`)
	assert.Equal(http.StatusOK, status)
	// own record plus the one readable foreign record
	assert.Contains(body, `"userId":"7"`)
	assert.Contains(body, `"userId":"8"`)
	assert.NotContains(body, `"userId":"9"`)
	assert.NotContains(body, `"userId":"10"`)
}

func TestServeSharedProfiles(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	social := &mock.SocialClient{
		ProfileEntityTypeIdFn: func(ctx context.Context, actorId int64) (int64, error) {
			return 33, nil
		},
		SharedEntitiesFn: func(ctx context.Context, query campo.SharedQuery) ([]int64, error) {
			assert.EqualValues(70, query.ActorId)
			assert.EqualValues(33, query.EntityTypeId)
			return []int64{501, 502, 900}, nil
		},
	}
	app, store := extProfileTestApp(t, social)

	seed := []campo.ExtendedProfile{
		{UserId: "8", AppId: "campuslife", ProfileId: "card", SocialId: 501},
		{UserId: "9", AppId: "sportapp", ProfileId: "card", SocialId: 502},
	}
	for _, profile := range seed {
		if !assert.NoError(store.StoreExtendedProfile(ctx, profile)) {
			t.FailNow()
		}
	}

	status, body := sendJson(t, app, "GET", "/extprofile/shared", "makowka", "")
	assert.Equal(http.StatusOK, status)
	assert.Contains(body, `"socialId":501`)
	assert.Contains(body, `"socialId":502`)
	assert.NotContains(body, `"socialId":900`)

	status, body = sendJson(t, app, "GET", "/extprofile/shared/sportapp", "makowka", "")
	assert.Equal(http.StatusOK, status)
	assert.NotContains(body, `"socialId":501`)
	assert.Contains(body, `"socialId":502`)
}
