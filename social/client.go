package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/campolab/campo"
	"github.com/gofiber/fiber/v2"
)

var ErrUnavailable = errors.New("social: engine unavailable")

// RestClient talks to the social engine web api.
type RestClient struct {
	BaseUrl string
}

var _ campo.SocialClient = (*RestClient)(nil)
var _ campo.UserResolver = (*RestClient)(nil)

func (c *RestClient) CreateEntity(ctx context.Context, ownerSocialId int64, kind string, label string,
	meta map[string]string) (int64, error) {
	type ReqBody struct {
		OwnerId    int64             `json:"ownerId"`
		Type       string            `json:"type"`
		Name       string            `json:"name"`
		Attributes map[string]string `json:"attributes,omitempty"`
	}
	body, err := json.Marshal(ReqBody{
		OwnerId:    ownerSocialId,
		Type:       kind,
		Name:       label,
		Attributes: meta,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal body: %w", err)
	}

	respBody, err := c.exchange(ctx, fiber.MethodPost, c.BaseUrl+"/api/entities", body,
		fiber.StatusOK, fiber.StatusCreated)
	if err != nil {
		return 0, fmt.Errorf("create entity: %w", err)
	}

	var response struct {
		Id int64 `json:"id"`
	}
	if err = json.Unmarshal(respBody, &response); err != nil {
		return 0, fmt.Errorf("unmarshal body: %w", err)
	}
	return response.Id, nil
}

func (c *RestClient) DeleteEntity(ctx context.Context, entityId int64) (bool, error) {
	respBody, err := c.exchange(ctx, fiber.MethodDelete,
		c.BaseUrl+"/api/entities/"+strconv.FormatInt(entityId, 10), nil,
		fiber.StatusOK, fiber.StatusNotFound)
	if err != nil {
		return false, fmt.Errorf("delete entity: %w", err)
	}
	if respBody == nil {
		return false, nil
	}

	var response struct {
		Deleted bool `json:"deleted"`
	}
	if err = json.Unmarshal(respBody, &response); err != nil {
		return false, fmt.Errorf("unmarshal body: %w", err)
	}
	return response.Deleted, nil
}

func (c *RestClient) CanRead(ctx context.Context, authToken string, entityId int64) (bool, error) {
	type ReqBody struct {
		AuthToken string `json:"authToken"`
		EntityId  int64  `json:"entityId"`
	}
	body, err := json.Marshal(ReqBody{AuthToken: authToken, EntityId: entityId})
	if err != nil {
		return false, fmt.Errorf("marshal body: %w", err)
	}

	respBody, err := c.exchange(ctx, fiber.MethodPost, c.BaseUrl+"/api/access/read", body,
		fiber.StatusOK)
	if err != nil {
		return false, fmt.Errorf("read permission: %w", err)
	}

	var response struct {
		Allowed bool `json:"allowed"`
	}
	if err = json.Unmarshal(respBody, &response); err != nil {
		return false, fmt.Errorf("unmarshal body: %w", err)
	}
	return response.Allowed, nil
}

func (c *RestClient) SharedEntities(ctx context.Context, query campo.SharedQuery) ([]int64, error) {
	type ReqBody struct {
		ActorId int64  `json:"actorId"`
		TypeId  int64  `json:"typeId"`
		Source  string `json:"source"`
		Scope   string `json:"scope"`
		Status  string `json:"status"`
	}
	body, err := json.Marshal(ReqBody{
		ActorId: query.ActorId,
		TypeId:  query.EntityTypeId,
		Source:  query.Source,
		Scope:   query.Scope,
		Status:  query.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	respBody, err := c.exchange(ctx, fiber.MethodPost, c.BaseUrl+"/api/sharing/compute", body,
		fiber.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("compute shared entities: %w", err)
	}

	var response struct {
		EntityIds []int64 `json:"entityIds"`
	}
	if err = json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("unmarshal body: %w", err)
	}
	return response.EntityIds, nil
}

// UserByToken resolves the bearer token into the calling user. Unknown
// or expired tokens are campo.ErrUserNotFound.
func (c *RestClient) UserByToken(ctx context.Context, token string) (campo.User, error) {
	if err := ctx.Err(); err != nil {
		return campo.User{}, err
	}

	agent := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(agent)
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	}

	req := agent.Request()
	req.Header.SetMethod(fiber.MethodGet)
	req.SetRequestURI(c.BaseUrl + "/api/users/me")
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	if err := agent.Parse(); err != nil {
		return campo.User{}, fmt.Errorf("agent parse: %w", err)
	}
	statusCode, respBody, errs := agent.Bytes()
	if len(errs) != 0 {
		return campo.User{}, fmt.Errorf("%w: %v", ErrUnavailable, errs)
	}
	switch statusCode {
	case fiber.StatusOK:
	case fiber.StatusUnauthorized, fiber.StatusNotFound:
		return campo.User{}, campo.ErrUserNotFound
	default:
		return campo.User{}, fmt.Errorf("invalid status code %d: %s", statusCode, string(respBody))
	}

	var response struct {
		Id         int64             `json:"id"`
		SocialId   int64             `json:"socialId"`
		Attributes map[string]string `json:"attributes"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return campo.User{}, fmt.Errorf("unmarshal body: %w", err)
	}
	attributes := make([]campo.Attribute, 0, len(response.Attributes))
	for key, value := range response.Attributes {
		attributes = append(attributes, campo.Attribute{Key: key, Value: value})
	}
	return campo.User{
		Id:         campo.UserId(response.Id),
		SocialId:   response.SocialId,
		AuthToken:  token,
		Attributes: attributes,
	}, nil
}

// ProfileEntityTypeId reads the actor's entity base, then resolves the
// "profile" type id within that knowledge base.
func (c *RestClient) ProfileEntityTypeId(ctx context.Context, actorId int64) (int64, error) {
	respBody, err := c.exchange(ctx, fiber.MethodGet,
		c.BaseUrl+"/api/actors/"+strconv.FormatInt(actorId, 10)+"/entity-base", nil,
		fiber.StatusOK)
	if err != nil {
		return 0, fmt.Errorf("read entity base: %w", err)
	}

	var entityBase struct {
		KnowledgeBase string `json:"knowledgeBase"`
	}
	if err = json.Unmarshal(respBody, &entityBase); err != nil {
		return 0, fmt.Errorf("unmarshal entity base: %w", err)
	}

	respBody, err = c.exchange(ctx, fiber.MethodGet,
		EntityTypeUrl(c.BaseUrl, entityBase.KnowledgeBase, "profile"), nil,
		fiber.StatusOK)
	if err != nil {
		return 0, fmt.Errorf("resolve entity type: %w", err)
	}

	var entityType struct {
		Id int64 `json:"id"`
	}
	if err = json.Unmarshal(respBody, &entityType); err != nil {
		return 0, fmt.Errorf("unmarshal entity type: %w", err)
	}
	return entityType.Id, nil
}

// EntityTypeUrl builds the type-resolution url for a named type inside
// a knowledge base.
func EntityTypeUrl(baseUrl string, knowledgeBase string, typeName string) string {
	query := url.Values{}
	query.Set("kb", knowledgeBase)
	query.Set("name", typeName)
	return baseUrl + "/api/entity-types?" + query.Encode()
}

// exchange performs one request and returns the body when the status is
// one of okStatuses. A StatusNotFound listed as acceptable yields a nil
// body instead of an error. A context deadline bounds the whole request.
func (c *RestClient) exchange(ctx context.Context, method string, requestUrl string, body []byte,
	okStatuses ...int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(agent)
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	}

	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(requestUrl)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.SetBody(body)
	}

	err := agent.Parse()
	if err != nil {
		return nil, fmt.Errorf("agent parse: %w", err)
	}

	statusCode, respBody, errs := agent.Bytes()
	if len(errs) != 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, errs)
	}

	for _, ok := range okStatuses {
		if statusCode == ok {
			if statusCode == fiber.StatusNotFound {
				return nil, nil
			}
			return respBody, nil
		}
	}
	if statusCode >= fiber.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status code %d: %s", ErrUnavailable, statusCode, string(respBody))
	}
	return nil, fmt.Errorf("invalid status code %d: %s", statusCode, string(respBody))
}
