package inmem

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/campolab/campo"
)

// ProfileStore keeps every record in memory. Intended for tests and
// development; semantics mirror the persistent store, including the
// composite-key uniqueness of extended profiles.
type ProfileStore struct {
	lastId   int64
	basic    []campo.BasicProfile
	extended []campo.ExtendedProfile
	mutex    sync.RWMutex
}

var _ campo.ProfileStore = (*ProfileStore)(nil)

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		basic:    []campo.BasicProfile{},
		extended: []campo.ExtendedProfile{},
	}
}

func (s *ProfileStore) BasicProfilesByFullName(ctx context.Context, pattern string) ([]campo.BasicProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	pattern = strings.ToLower(pattern)
	matched := []campo.BasicProfile{}
	for _, p := range s.basic {
		if strings.Contains(strings.ToLower(p.FullName), pattern) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *ProfileStore) AllBasicProfiles(ctx context.Context) ([]campo.BasicProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]campo.BasicProfile{}, s.basic...), nil
}

func (s *ProfileStore) BasicProfilesByUserIds(ctx context.Context, userIds []string) ([]campo.BasicProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	wanted := make(map[string]bool, len(userIds))
	for _, id := range userIds {
		wanted[id] = true
	}
	matched := []campo.BasicProfile{}
	for _, p := range s.basic {
		if wanted[p.UserId] {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *ProfileStore) BasicProfileByUserId(ctx context.Context, userId string) (*campo.BasicProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, p := range s.basic {
		if p.UserId == userId {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (s *ProfileStore) StoreBasicProfile(ctx context.Context, profile campo.BasicProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.lastId++
	profile.Id = s.lastId
	s.basic = append(s.basic, profile)
	return nil
}

func (s *ProfileStore) UpdateBasicProfile(ctx context.Context, profile campo.BasicProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, p := range s.basic {
		if p.Id == profile.Id {
			s.basic[i] = profile
			return nil
		}
	}
	return campo.ErrProfileNotFound
}

func (s *ProfileStore) DeleteBasicProfileByUserId(ctx context.Context, userId string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, p := range s.basic {
		if p.UserId == userId {
			s.basic = append(s.basic[:i], s.basic[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *ProfileStore) ExtendedProfile(ctx context.Context, userId, appId, profileId string) (*campo.ExtendedProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, p := range s.extended {
		if p.UserId == userId && p.AppId == appId && p.ProfileId == profileId {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (s *ProfileStore) ExtendedProfileById(ctx context.Context, id int64) (*campo.ExtendedProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, p := range s.extended {
		if p.Id == id {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (s *ProfileStore) ExtendedProfileByEntityId(ctx context.Context, entityId int64, appId, profileId string) (*campo.ExtendedProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, p := range s.extended {
		if p.SocialId != entityId {
			continue
		}
		if appId != "" && p.AppId != appId {
			continue
		}
		if profileId != "" && p.ProfileId != profileId {
			continue
		}
		found := p
		return &found, nil
	}
	return nil, nil
}

func (s *ProfileStore) ExtendedProfilesByUser(ctx context.Context, userId string) ([]campo.ExtendedProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	matched := []campo.ExtendedProfile{}
	for _, p := range s.extended {
		if p.UserId == userId {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *ProfileStore) ExtendedProfilesByUserApp(ctx context.Context, userId, appId string) ([]campo.ExtendedProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	matched := []campo.ExtendedProfile{}
	for _, p := range s.extended {
		if p.UserId == userId && p.AppId == appId {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *ProfileStore) ExtendedProfilesByAttributes(ctx context.Context, appId, profileId string,
	attrs map[string]interface{}) ([]campo.ExtendedProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	matched := []campo.ExtendedProfile{}
	for _, p := range s.extended {
		if p.AppId != appId || p.ProfileId != profileId {
			continue
		}
		if contentMatches(p.Content, attrs) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// contentMatches mirrors postgres jsonb containment: objects match when
// every wanted field is contained, arrays when every wanted element is
// contained in some element, scalars by equality.
func contentMatches(content map[string]interface{}, attrs map[string]interface{}) bool {
	for key, want := range attrs {
		got, ok := content[key]
		if !ok || !valueContains(got, want) {
			return false
		}
	}
	return true
}

func valueContains(got interface{}, want interface{}) bool {
	switch want := want.(type) {
	case map[string]interface{}:
		gotMap, ok := got.(map[string]interface{})
		if !ok {
			return false
		}
		return contentMatches(gotMap, want)
	case []interface{}:
		gotSlice, ok := got.([]interface{})
		if !ok {
			return false
		}
		for _, wantElem := range want {
			matched := false
			for _, gotElem := range gotSlice {
				if valueContains(gotElem, wantElem) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(got, want)
	}
}

func copyContent(content map[string]interface{}) map[string]interface{} {
	if content == nil {
		return nil
	}
	copied := make(map[string]interface{}, len(content))
	for key, value := range content {
		copied[key] = copyValue(value)
	}
	return copied
}

func copyValue(value interface{}) interface{} {
	switch value := value.(type) {
	case map[string]interface{}:
		return copyContent(value)
	case []interface{}:
		copied := make([]interface{}, len(value))
		for i, elem := range value {
			copied[i] = copyValue(elem)
		}
		return copied
	default:
		return value
	}
}

func (s *ProfileStore) StoreExtendedProfile(ctx context.Context, profile campo.ExtendedProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, p := range s.extended {
		if p.UserId == profile.UserId && p.AppId == profile.AppId && p.ProfileId == profile.ProfileId {
			return campo.ErrExtendedProfileExists
		}
	}
	s.lastId++
	profile.Id = s.lastId
	profile.Content = copyContent(profile.Content)
	s.extended = append(s.extended, profile)
	return nil
}

func (s *ProfileStore) UpdateExtendedProfile(ctx context.Context, profile campo.ExtendedProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, p := range s.extended {
		if p.Id == profile.Id {
			profile.Content = copyContent(profile.Content)
			s.extended[i] = profile
			return nil
		}
	}
	return campo.ErrProfileNotFound
}

func (s *ProfileStore) DeleteExtendedProfileByKey(ctx context.Context, userId, appId, profileId string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, p := range s.extended {
		if p.UserId == userId && p.AppId == appId && p.ProfileId == profileId {
			s.extended = append(s.extended[:i], s.extended[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *ProfileStore) DeleteExtendedProfileById(ctx context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, p := range s.extended {
		if p.Id == id {
			s.extended = append(s.extended[:i], s.extended[i+1:]...)
			return nil
		}
	}
	return nil
}
