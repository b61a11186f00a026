package campo

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrProfileNotFound       = errors.New("profile not found")
	ErrExtendedProfileExists = errors.New("extended profile already exists")
	ErrProfileMismatch       = errors.New("profile owner mismatch")

	// Category sentinels wrapped into errors crossing a collaborator
	// boundary. Match with errors.Is.
	ErrStorage     = errors.New("profile storage failure")
	ErrSocialGraph = errors.New("social graph failure")
)

// BasicProfile is the canonical one-per-user identity record.
type BasicProfile struct {
	Id         int64
	UserId     string
	Name       string
	Surname    string
	FullName   string
	SocialId   int64
	UpdateTime time.Time
}

// ExtendedProfile is an application-defined record keyed by
// (UserId, AppId, ProfileId). Content is opaque to this service.
// SocialId is the paired entity in the social graph.
type ExtendedProfile struct {
	Id         int64
	UserId     string
	AppId      string
	ProfileId  string
	SocialId   int64
	Content    map[string]interface{}
	UpdateTime time.Time
}

func (p ExtendedProfile) Key() string {
	return p.UserId + "/" + p.AppId + "/" + p.ProfileId
}

// FullName derives the display name stored on a basic profile.
// Absent parts are treated as empty strings.
func FullName(name string, surname string) string {
	return strings.TrimSpace(name + " " + surname)
}

// ProfileStore queries a single heterogeneous collection of profile
// records. Single-record lookups report absence as a nil profile with a
// nil error; only real storage failures surface as errors (wrapping
// ErrStorage). Deletes are logical unless stated otherwise, and logically
// deleted records never show up in reads.
type ProfileStore interface {
	// Case-insensitive substring match on full name.
	BasicProfilesByFullName(ctx context.Context, pattern string) ([]BasicProfile, error)

	AllBasicProfiles(ctx context.Context) ([]BasicProfile, error)

	BasicProfilesByUserIds(ctx context.Context, userIds []string) ([]BasicProfile, error)

	BasicProfileByUserId(ctx context.Context, userId string) (*BasicProfile, error)

	StoreBasicProfile(ctx context.Context, profile BasicProfile) error

	// Full replace of mutable fields. Identity fields are never changed.
	UpdateBasicProfile(ctx context.Context, profile BasicProfile) error

	// Soft delete of the user's basic profile, if any.
	DeleteBasicProfileByUserId(ctx context.Context, userId string) error

	// Exact match on the composite key. First match wins should storage
	// ever hold duplicates.
	ExtendedProfile(ctx context.Context, userId string, appId string, profileId string) (*ExtendedProfile, error)

	ExtendedProfileById(ctx context.Context, id int64) (*ExtendedProfile, error)

	// Reverse lookup by the paired social entity id. Empty appId or
	// profileId means no narrowing on that field.
	ExtendedProfileByEntityId(ctx context.Context, entityId int64, appId string, profileId string) (*ExtendedProfile, error)

	ExtendedProfilesByUser(ctx context.Context, userId string) ([]ExtendedProfile, error)

	ExtendedProfilesByUserApp(ctx context.Context, userId string, appId string) ([]ExtendedProfile, error)

	// Each attrs entry is an exact-match predicate against the profile
	// content, AND-ed together.
	ExtendedProfilesByAttributes(ctx context.Context, appId string, profileId string,
		attrs map[string]interface{}) ([]ExtendedProfile, error)

	// Returns ErrExtendedProfileExists when a live record with the same
	// composite key already exists.
	StoreExtendedProfile(ctx context.Context, profile ExtendedProfile) error

	UpdateExtendedProfile(ctx context.Context, profile ExtendedProfile) error

	// Soft delete of the first record matching the composite key.
	DeleteExtendedProfileByKey(ctx context.Context, userId string, appId string, profileId string) error

	// Hard delete by record id.
	DeleteExtendedProfileById(ctx context.Context, id int64) error
}
