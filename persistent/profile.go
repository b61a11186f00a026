package persistent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campolab/campo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	recordTypeBasic    = "basic"
	recordTypeExtended = "extended"
)

// Record is the single heterogeneous row shape holding both profile
// kinds, discriminated by Type. Reads never see soft-deleted rows;
// uniqueness per kind is enforced with partial unique indexes (see
// CreateSchema).
type Record struct {
	bun.BaseModel `bun:"table:profile_record"`

	Id         int64                  `bun:",pk,autoincrement"`
	Type       string                 `bun:",notnull"`
	UserId     string                 `bun:",notnull"`
	AppId      string                 `bun:",nullzero"`
	ProfileId  string                 `bun:",nullzero"`
	Name       string                 `bun:",nullzero"`
	Surname    string                 `bun:",nullzero"`
	FullName   string                 `bun:",nullzero"`
	SocialId   int64                  `bun:",nullzero"`
	Content    map[string]interface{} `bun:"content,type:jsonb,nullzero"`
	UpdateTime time.Time              `bun:",nullzero"`
	DeletedAt  time.Time              `bun:",soft_delete,nullzero"`
}

func (r Record) ToBasic() campo.BasicProfile {
	return campo.BasicProfile{
		Id:         r.Id,
		UserId:     r.UserId,
		Name:       r.Name,
		Surname:    r.Surname,
		FullName:   r.FullName,
		SocialId:   r.SocialId,
		UpdateTime: r.UpdateTime,
	}
}

func (r Record) ToExtended() campo.ExtendedProfile {
	return campo.ExtendedProfile{
		Id:         r.Id,
		UserId:     r.UserId,
		AppId:      r.AppId,
		ProfileId:  r.ProfileId,
		SocialId:   r.SocialId,
		Content:    r.Content,
		UpdateTime: r.UpdateTime,
	}
}

func basicRecord(p campo.BasicProfile) Record {
	return Record{
		Id:         p.Id,
		Type:       recordTypeBasic,
		UserId:     p.UserId,
		Name:       p.Name,
		Surname:    p.Surname,
		FullName:   p.FullName,
		SocialId:   p.SocialId,
		UpdateTime: p.UpdateTime,
	}
}

func extendedRecord(p campo.ExtendedProfile) Record {
	return Record{
		Id:         p.Id,
		Type:       recordTypeExtended,
		UserId:     p.UserId,
		AppId:      p.AppId,
		ProfileId:  p.ProfileId,
		SocialId:   p.SocialId,
		Content:    p.Content,
		UpdateTime: p.UpdateTime,
	}
}

type ProfileStore struct {
	DB *bun.DB
}

var _ campo.ProfileStore = (*ProfileStore)(nil)

func (s *ProfileStore) BasicProfilesByFullName(ctx context.Context, pattern string) ([]campo.BasicProfile, error) {
	var records []Record
	err := s.DB.NewSelect().
		Model(&records).
		Where("type=?", recordTypeBasic).
		Where("full_name ILIKE ?", "%"+escapeLike(pattern)+"%").
		Scan(ctx)
	if err != nil {
		return nil, storageErr("select basic profiles by full name", err)
	}
	return toBasicProfiles(records), nil
}

func (s *ProfileStore) AllBasicProfiles(ctx context.Context) ([]campo.BasicProfile, error) {
	var records []Record
	err := s.DB.NewSelect().
		Model(&records).
		Where("type=?", recordTypeBasic).
		Scan(ctx)
	if err != nil {
		return nil, storageErr("select all basic profiles", err)
	}
	return toBasicProfiles(records), nil
}

func (s *ProfileStore) BasicProfilesByUserIds(ctx context.Context, userIds []string) ([]campo.BasicProfile, error) {
	if len(userIds) == 0 {
		return []campo.BasicProfile{}, nil
	}
	var records []Record
	err := s.DB.NewSelect().
		Model(&records).
		Where("type=?", recordTypeBasic).
		Where("user_id IN (?)", bun.In(userIds)).
		Scan(ctx)
	if err != nil {
		return nil, storageErr("select basic profiles by user ids", err)
	}
	return toBasicProfiles(records), nil
}

func (s *ProfileStore) BasicProfileByUserId(ctx context.Context, userId string) (*campo.BasicProfile, error) {
	record := new(Record)
	err := s.DB.NewSelect().
		Model(record).
		Where("type=?", recordTypeBasic).
		Where("user_id=?", userId).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select basic profile by user id", err)
	}
	profile := record.ToBasic()
	return &profile, nil
}

func (s *ProfileStore) StoreBasicProfile(ctx context.Context, profile campo.BasicProfile) error {
	record := basicRecord(profile)
	record.Id = 0
	_, err := s.DB.NewInsert().
		Model(&record).
		Exec(ctx)
	if err != nil {
		return storageErr("insert basic profile", err)
	}
	return nil
}

func (s *ProfileStore) UpdateBasicProfile(ctx context.Context, profile campo.BasicProfile) error {
	record := basicRecord(profile)
	_, err := s.DB.NewUpdate().
		Model(&record).
		Column("name", "surname", "full_name", "social_id", "update_time").
		WherePK().
		Exec(ctx)
	if err != nil {
		return storageErr("update basic profile", err)
	}
	return nil
}

func (s *ProfileStore) DeleteBasicProfileByUserId(ctx context.Context, userId string) error {
	_, err := s.DB.NewDelete().
		Model((*Record)(nil)).
		Where("type=?", recordTypeBasic).
		Where("user_id=?", userId).
		Exec(ctx)
	if err != nil {
		return storageErr("soft delete basic profile", err)
	}
	return nil
}

func (s *ProfileStore) ExtendedProfile(ctx context.Context, userId, appId, profileId string) (*campo.ExtendedProfile, error) {
	record := new(Record)
	err := s.DB.NewSelect().
		Model(record).
		Where("type=?", recordTypeExtended).
		Where("user_id=?", userId).
		Where("app_id=?", appId).
		Where("profile_id=?", profileId).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select extended profile", err)
	}
	profile := record.ToExtended()
	return &profile, nil
}

func (s *ProfileStore) ExtendedProfileById(ctx context.Context, id int64) (*campo.ExtendedProfile, error) {
	record := new(Record)
	err := s.DB.NewSelect().
		Model(record).
		Where("type=?", recordTypeExtended).
		Where("id=?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select extended profile by id", err)
	}
	profile := record.ToExtended()
	return &profile, nil
}

func (s *ProfileStore) ExtendedProfileByEntityId(ctx context.Context, entityId int64, appId, profileId string) (*campo.ExtendedProfile, error) {
	query := s.DB.NewSelect().
		Model((*Record)(nil)).
		Where("type=?", recordTypeExtended).
		Where("social_id=?", entityId)
	if appId != "" {
		query = query.Where("app_id=?", appId)
	}
	if profileId != "" {
		query = query.Where("profile_id=?", profileId)
	}

	record := new(Record)
	err := query.Limit(1).Scan(ctx, record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select extended profile by entity id", err)
	}
	profile := record.ToExtended()
	return &profile, nil
}

func (s *ProfileStore) ExtendedProfilesByUser(ctx context.Context, userId string) ([]campo.ExtendedProfile, error) {
	var records []Record
	err := s.DB.NewSelect().
		Model(&records).
		Where("type=?", recordTypeExtended).
		Where("user_id=?", userId).
		Scan(ctx)
	if err != nil {
		return nil, storageErr("select extended profiles by user", err)
	}
	return toExtendedProfiles(records), nil
}

func (s *ProfileStore) ExtendedProfilesByUserApp(ctx context.Context, userId, appId string) ([]campo.ExtendedProfile, error) {
	var records []Record
	err := s.DB.NewSelect().
		Model(&records).
		Where("type=?", recordTypeExtended).
		Where("user_id=?", userId).
		Where("app_id=?", appId).
		Scan(ctx)
	if err != nil {
		return nil, storageErr("select extended profiles by user and app", err)
	}
	return toExtendedProfiles(records), nil
}

func (s *ProfileStore) ExtendedProfilesByAttributes(ctx context.Context, appId, profileId string,
	attrs map[string]interface{}) ([]campo.ExtendedProfile, error) {
	query := s.DB.NewSelect().
		Model((*Record)(nil)).
		Where("type=?", recordTypeExtended).
		Where("app_id=?", appId).
		Where("profile_id=?", profileId)
	if len(attrs) > 0 {
		// jsonb containment gives exact-match AND semantics for every
		// attribute, nested values included.
		encoded, err := json.Marshal(attrs)
		if err != nil {
			return nil, fmt.Errorf("marshal attribute filter: %w", err)
		}
		query = query.Where("content @> ?::jsonb", string(encoded))
	}

	var records []Record
	err := query.Scan(ctx, &records)
	if err != nil {
		return nil, storageErr("select extended profiles by attributes", err)
	}
	return toExtendedProfiles(records), nil
}

func (s *ProfileStore) StoreExtendedProfile(ctx context.Context, profile campo.ExtendedProfile) error {
	record := extendedRecord(profile)
	record.Id = 0
	_, err := s.DB.NewInsert().
		Model(&record).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", campo.ErrExtendedProfileExists, profile.Key())
		}
		return storageErr("insert extended profile", err)
	}
	return nil
}

func (s *ProfileStore) UpdateExtendedProfile(ctx context.Context, profile campo.ExtendedProfile) error {
	record := extendedRecord(profile)
	_, err := s.DB.NewUpdate().
		Model(&record).
		Column("content", "social_id", "update_time").
		WherePK().
		Exec(ctx)
	if err != nil {
		return storageErr("update extended profile", err)
	}
	return nil
}

func (s *ProfileStore) DeleteExtendedProfileByKey(ctx context.Context, userId, appId, profileId string) error {
	present, err := s.ExtendedProfile(ctx, userId, appId, profileId)
	if err != nil {
		return err
	}
	if present == nil {
		return nil
	}
	_, err = s.DB.NewDelete().
		Model((*Record)(nil)).
		Where("id=?", present.Id).
		Exec(ctx)
	if err != nil {
		return storageErr("soft delete extended profile", err)
	}
	return nil
}

func (s *ProfileStore) DeleteExtendedProfileById(ctx context.Context, id int64) error {
	_, err := s.DB.NewDelete().
		Model((*Record)(nil)).
		Where("id=?", id).
		ForceDelete().
		Exec(ctx)
	if err != nil {
		return storageErr("hard delete extended profile", err)
	}
	return nil
}

func toBasicProfiles(records []Record) []campo.BasicProfile {
	profiles := make([]campo.BasicProfile, len(records))
	for i, r := range records {
		profiles[i] = r.ToBasic()
	}
	return profiles
}

func toExtendedProfiles(records []Record) []campo.ExtendedProfile {
	profiles := make([]campo.ExtendedProfile, len(records))
	for i, r := range records {
		profiles[i] = r.ToExtended()
	}
	return profiles
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", campo.ErrStorage, op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}

// escapeLike neutralizes LIKE metacharacters so user input only ever
// matches literally.
func escapeLike(pattern string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(pattern)
}
