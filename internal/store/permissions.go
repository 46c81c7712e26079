package store

import (
	"fmt"

	"gorm.io/gorm"
)

// viewableBy restricts a query on table to rows user holds codename on,
// either directly or through one of their groups. Superusers see every
// row and anonymous users see none.
func (r *GormRepository) viewableBy(user *User, codename, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if user == nil || user.ID == 0 {
			return db.Where("1 = 0")
		}
		if user.IsSuperuser {
			return db
		}

		direct := r.db.Model(&UserObjectPermission{}).
			Select("object_id").
			Where("user_id = ? AND codename = ?", user.ID, codename)
		memberOf := r.db.Model(&UserGroup{}).
			Select("group_id").
			Where("user_id = ?", user.ID)
		viaGroup := r.db.Model(&GroupObjectPermission{}).
			Select("object_id").
			Where("codename = ? AND group_id IN (?)", codename, memberOf)

		return db.Where(fmt.Sprintf("%[1]s.id IN (?) OR %[1]s.id IN (?)", table), direct, viaGroup)
	}
}
