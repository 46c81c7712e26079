package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormRepository implements Repository on a gorm connection
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository wraps an open gorm connection
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// DB returns the underlying connection
func (r *GormRepository) DB() *gorm.DB {
	return r.db
}

// Ping checks the database connection
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql handle")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "ping database")
}

func first[T any](ctx context.Context, db *gorm.DB, what string, id uint) (*T, error) {
	var out T
	err := db.WithContext(ctx).First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "%s %d", what, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s %d", what, id)
	}
	return &out, nil
}

func (r *GormRepository) Target(ctx context.Context, id uint) (*Target, error) {
	return first[Target](ctx, r.db, "target", id)
}

func (r *GormRepository) ObservationRecord(ctx context.Context, id uint) (*ObservationRecord, error) {
	return first[ObservationRecord](ctx, r.db, "observation record", id)
}

func (r *GormRepository) DataProduct(ctx context.Context, id uint) (*DataProduct, error) {
	return first[DataProduct](ctx, r.db, "data product", id)
}

func (r *GormRepository) UserByName(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "user %q", username)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

func (r *GormRepository) ReducedData(ctx context.Context, q ReducedDataQuery) ([]ReducedDatum, error) {
	tx := r.db.WithContext(ctx).
		Where("target_id = ? AND data_type = ?", q.TargetID, q.DataType)
	if q.DataProductID != nil {
		tx = tx.Where("data_product_id = ?", *q.DataProductID)
	}
	if q.CheckPermissions {
		tx = tx.Scopes(r.viewableBy(q.Viewer, PermViewReducedDatum, ReducedDatum{}.TableName()))
	}

	var data []ReducedDatum
	if err := tx.Order("id").Find(&data).Error; err != nil {
		return nil, errors.Wrap(err, "find reduced data")
	}
	return data, nil
}

func (r *GormRepository) DataProductIDs(ctx context.Context, targetID uint, dataType string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&ReducedDatum{}).
		Where("target_id = ? AND data_type = ? AND data_product_id IS NOT NULL", targetID, dataType).
		Distinct("data_product_id").
		Pluck("data_product_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "get distinct data product ids")
	}
	return ids, nil
}

func (r *GormRepository) ReducedDatumExtras(ctx context.Context, key, dataType string) ([]ReducedDatumExtra, error) {
	var extras []ReducedDatumExtra
	err := r.db.WithContext(ctx).
		Where("key = ? AND data_type = ?", key, dataType).
		Order("id").
		Find(&extras).Error
	if err != nil {
		return nil, errors.Wrap(err, "find reduced datum extras")
	}
	return extras, nil
}

func (r *GormRepository) TargetExtra(ctx context.Context, targetID uint, key string) (*TargetExtra, error) {
	var extras []TargetExtra
	err := r.db.WithContext(ctx).
		Where("target_id = ? AND key = ?", targetID, key).
		Limit(2).
		Find(&extras).Error
	if err != nil {
		return nil, errors.Wrap(err, "find target extra")
	}
	// A key stored twice is as unusable as a missing one
	if len(extras) != 1 {
		return nil, errors.Wrapf(ErrNotFound, "target extra %q of target %d", key, targetID)
	}
	return &extras[0], nil
}

func (r *GormRepository) ScienceTags(ctx context.Context) ([]ScienceTag, error) {
	var tags []ScienceTag
	if err := r.db.WithContext(ctx).Order("lower(tag)").Order("id").Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "find science tags")
	}
	return tags, nil
}

func (r *GormRepository) TargetTagNames(ctx context.Context, targetID uint) ([]string, error) {
	var links []TargetTag
	if err := r.db.WithContext(ctx).Where("target_id = ?", targetID).Order("id").Find(&links).Error; err != nil {
		return nil, errors.Wrap(err, "find target tags")
	}
	if len(links) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.TagID)
	}
	var tags []ScienceTag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "find science tags")
	}
	byID := make(map[uint]string, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag.Tag
	}

	names := make([]string, 0, len(links))
	for _, link := range links {
		// links to deleted tags are dropped
		if name, ok := byID[link.TagID]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (r *GormRepository) Groups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := r.db.WithContext(ctx).Order("id").Find(&groups).Error; err != nil {
		return nil, errors.Wrap(err, "find groups")
	}
	return groups, nil
}

func (r *GormRepository) UserGroups(ctx context.Context, userID uint) ([]Group, error) {
	var groups []Group
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&UserGroup{}).Select("group_id").Where("user_id = ?", userID)).
		Order("id").
		Find(&groups).Error
	if err != nil {
		return nil, errors.Wrap(err, "find user groups")
	}
	return groups, nil
}

func (r *GormRepository) GroupsWithPermission(ctx context.Context, codename string, objectID uint) ([]Group, error) {
	var groups []Group
	perms := r.db.Model(&GroupObjectPermission{}).
		Select("group_id").
		Where("codename = ? AND object_id = ?", codename, objectID)
	err := r.db.WithContext(ctx).
		Where("id IN (?)", perms).
		Order("id").
		Find(&groups).Error
	if err != nil {
		return nil, errors.Wrap(err, "find groups with permission")
	}
	return groups, nil
}
