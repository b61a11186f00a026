package campo

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

type UserId int64

// Identity attribute keys populated by the authentication provider.
const (
	AttrGivenName = "givenname"
	AttrSurname   = "surname"
)

type Attribute struct {
	Key   string
	Value string
}

// User is the authenticated caller as supplied by the identity provider.
// SocialId is the user's actor handle in the social graph.
type User struct {
	Id         UserId
	SocialId   int64
	AuthToken  string
	Attributes []Attribute
}

// Attribute returns the value of the first attribute with the given key.
func (u User) Attribute(key string) (string, bool) {
	for _, attr := range u.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

type UserResolver interface {
	// Resolve the user owning the given auth token.
	// Returns ErrUserNotFound if the token maps to no user.
	UserByToken(ctx context.Context, token string) (User, error)
}
