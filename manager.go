package campo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ProfileManager enforces the identity and uniqueness rules over profile
// records and drives the paired social-graph entity lifecycle.
type ProfileManager struct {
	Store  ProfileStore
	Social SocialClient

	// Optional audit trail. Failures are logged, never surfaced.
	Activity ActivityStore

	Shared *SharedResolver
}

// SharedWith lists the entity ids of extended profiles currently shared
// with the actor. Dependency failures degrade to an empty list.
func (m *ProfileManager) SharedWith(ctx context.Context, actorId int64) []int64 {
	if m.Shared == nil {
		return []int64{}
	}
	return m.Shared.SharedEntityIds(ctx, actorId)
}

// UpsertBasicProfile persists the profile under its userId, recomputing
// the full name. At most one record per userId ever exists: a present
// record is updated in place, otherwise the profile is inserted and
// re-read to pick up the generated id.
func (m *ProfileManager) UpsertBasicProfile(ctx context.Context, profile BasicProfile) (BasicProfile, error) {
	profile.FullName = FullName(profile.Name, profile.Surname)
	profile.UpdateTime = time.Now().UTC()

	present, err := m.Store.BasicProfileByUserId(ctx, profile.UserId)
	if err != nil {
		return BasicProfile{}, fmt.Errorf("lookup basic profile: %w", err)
	}
	if present != nil {
		updated := *present
		updated.Name = profile.Name
		updated.Surname = profile.Surname
		updated.FullName = profile.FullName
		updated.SocialId = profile.SocialId
		updated.UpdateTime = profile.UpdateTime
		if err := m.Store.UpdateBasicProfile(ctx, updated); err != nil {
			return BasicProfile{}, fmt.Errorf("update basic profile: %w", err)
		}
		return updated, nil
	}

	if err := m.Store.StoreBasicProfile(ctx, profile); err != nil {
		return BasicProfile{}, fmt.Errorf("store basic profile: %w", err)
	}
	stored, err := m.Store.BasicProfileByUserId(ctx, profile.UserId)
	if err != nil {
		return BasicProfile{}, fmt.Errorf("reread basic profile: %w", err)
	}
	if stored == nil {
		return BasicProfile{}, fmt.Errorf("%w: basic profile vanished after store", ErrStorage)
	}
	return *stored, nil
}

// GetOrCreateBasicProfile returns the user's basic profile, creating one
// from the identity attributes on first access. When either the given
// name or the surname attribute is missing no profile is created and
// (nil, nil) is returned.
func (m *ProfileManager) GetOrCreateBasicProfile(ctx context.Context, user User) (*BasicProfile, error) {
	userId := strconv.FormatInt(int64(user.Id), 10)
	present, err := m.Store.BasicProfileByUserId(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("lookup basic profile: %w", err)
	}
	if present != nil {
		return present, nil
	}

	name, hasName := user.Attribute(AttrGivenName)
	surname, hasSurname := user.Attribute(AttrSurname)
	if !hasName || !hasSurname {
		return nil, nil
	}

	created, err := m.UpsertBasicProfile(ctx, BasicProfile{
		UserId:   userId,
		Name:     name,
		Surname:  surname,
		SocialId: user.SocialId,
	})
	if err != nil {
		return nil, fmt.Errorf("create basic profile: %w", err)
	}
	m.addLog(ctx, user.Id, Activity{Name: "basic_profile_created", Data: map[string]interface{}{
		"userId": userId,
	}})
	return &created, nil
}

// DeleteBasicProfile removes the user's basic profile.
func (m *ProfileManager) DeleteBasicProfile(ctx context.Context, user User) error {
	userId := strconv.FormatInt(int64(user.Id), 10)
	if err := m.Store.DeleteBasicProfileByUserId(ctx, userId); err != nil {
		return fmt.Errorf("delete basic profile: %w", err)
	}
	m.addLog(ctx, user.Id, Activity{Name: "basic_profile_deleted", Data: map[string]interface{}{
		"userId": userId,
	}})
	return nil
}

// CreateExtendedProfile creates the profile once per composite key. The
// paired social-graph entity is created first; the profile record is
// never persisted without it. A storage failure after the entity exists
// leaves an orphaned entity behind, which is logged and accepted.
func (m *ProfileManager) CreateExtendedProfile(ctx context.Context, user User, profile ExtendedProfile) (ExtendedProfile, error) {
	if profile.UserId == "" {
		return ExtendedProfile{}, fmt.Errorf("%w: empty user id", ErrProfileMismatch)
	}
	ownerId, err := strconv.ParseInt(profile.UserId, 10, 64)
	if err != nil || UserId(ownerId) != user.Id {
		return ExtendedProfile{}, fmt.Errorf("%w: profile user %q, authenticated user %d",
			ErrProfileMismatch, profile.UserId, user.Id)
	}

	present, err := m.Store.ExtendedProfile(ctx, profile.UserId, profile.AppId, profile.ProfileId)
	if err != nil {
		return ExtendedProfile{}, fmt.Errorf("lookup extended profile: %w", err)
	}
	if present != nil {
		return ExtendedProfile{}, fmt.Errorf("%w: %s", ErrExtendedProfileExists, profile.Key())
	}

	entityId, err := m.Social.CreateEntity(ctx, user.SocialId, "profile",
		"profileId:"+profile.ProfileId, map[string]string{
			"appId":  profile.AppId,
			"userId": profile.UserId,
		})
	if err != nil {
		return ExtendedProfile{}, fmt.Errorf("%w: create profile entity: %v", ErrSocialGraph, err)
	}
	profile.SocialId = entityId
	profile.UpdateTime = time.Now().UTC()

	if err := m.Store.StoreExtendedProfile(ctx, profile); err != nil {
		// The entity already exists in the social graph with nothing to
		// own it. There is no cross-backend transaction to roll it back.
		logrus.WithError(err).
			WithField("entity_id", entityId).
			WithField("profile_key", profile.Key()).
			Errorln("Extended profile store failed after entity creation, entity orphaned.")
		if errors.Is(err, ErrExtendedProfileExists) {
			return ExtendedProfile{}, err
		}
		return ExtendedProfile{}, fmt.Errorf("%w: store extended profile: %v", ErrSocialGraph, err)
	}

	m.addLog(ctx, user.Id, Activity{Name: "extended_profile_created", Data: map[string]interface{}{
		"profile_key": profile.Key(),
		"entity_id":   entityId,
	}})
	return profile, nil
}

// DeleteExtendedProfile removes the profile and, best effort, its paired
// social-graph entity. A failed entity delete never aborts the profile
// deletion.
func (m *ProfileManager) DeleteExtendedProfile(ctx context.Context, profile ExtendedProfile) error {
	deleted, err := m.Social.DeleteEntity(ctx, profile.SocialId)
	if err != nil || !deleted {
		logrus.WithError(err).
			WithField("entity_id", profile.SocialId).
			WithField("profile_id", profile.Id).
			Warningln("Could not delete entity bound to extended profile.")
	}

	err = m.Store.DeleteExtendedProfileByKey(ctx, profile.UserId, profile.AppId, profile.ProfileId)
	if err != nil {
		return fmt.Errorf("delete extended profile: %w", err)
	}
	m.addLog(ctx, ownerUserId(profile), Activity{Name: "extended_profile_deleted", Data: map[string]interface{}{
		"profile_key": profile.Key(),
	}})
	return nil
}

// DeleteExtendedProfileById resolves the record first; a missing record
// is ErrProfileNotFound.
func (m *ProfileManager) DeleteExtendedProfileById(ctx context.Context, id int64) error {
	profile, err := m.Store.ExtendedProfileById(ctx, id)
	if err != nil {
		return fmt.Errorf("lookup extended profile %d: %w", id, err)
	}
	if profile == nil {
		return fmt.Errorf("%w: extended profile %d", ErrProfileNotFound, id)
	}
	return m.DeleteExtendedProfile(ctx, *profile)
}

// UpdateExtendedProfileContent replaces the content of an existing
// profile. A missing record is ErrProfileNotFound.
func (m *ProfileManager) UpdateExtendedProfileContent(ctx context.Context,
	userId string, appId string, profileId string, content map[string]interface{}) (ExtendedProfile, error) {
	profile, err := m.Store.ExtendedProfile(ctx, userId, appId, profileId)
	if err != nil {
		return ExtendedProfile{}, fmt.Errorf("lookup extended profile: %w", err)
	}
	if profile == nil {
		return ExtendedProfile{}, fmt.Errorf("%w: %s/%s/%s", ErrProfileNotFound, userId, appId, profileId)
	}
	profile.Content = content
	profile.UpdateTime = time.Now().UTC()
	if err := m.Store.UpdateExtendedProfile(ctx, *profile); err != nil {
		return ExtendedProfile{}, fmt.Errorf("update extended profile: %w", err)
	}
	return *profile, nil
}

func (m *ProfileManager) addLog(ctx context.Context, userId UserId, activity Activity) {
	if m.Activity == nil {
		return
	}
	if err := m.Activity.AddLog(ctx, userId, activity); err != nil {
		logrus.WithError(err).
			WithField("activity", activity.Name).
			Warningln("Could not add activity log.")
	}
}

func ownerUserId(profile ExtendedProfile) UserId {
	id, err := strconv.ParseInt(profile.UserId, 10, 64)
	if err != nil {
		return 0
	}
	return UserId(id)
}
