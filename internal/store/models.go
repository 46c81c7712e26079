package store

import "time"

// Data types of reduced data and data products
const (
	DataTypePhotometry   = "photometry"
	DataTypeSpectroscopy = "spectroscopy"
)

// Object permission codenames
const (
	PermViewReducedDatum = "view_reduceddatum"
	PermViewDataProduct  = "view_dataproduct"
)

// UploadExtrasKey is the reduced datum extra key holding upload metadata
const UploadExtrasKey = "upload_extras"

type Target struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"not null"`
	Type    string
	RA      float64 `gorm:"column:ra"`
	Dec     float64 `gorm:"column:dec"`
	Epoch   float64
	Created time.Time
}

func (Target) TableName() string { return "tom_targets_target" }

type TargetExtra struct {
	ID       uint   `gorm:"primaryKey"`
	TargetID uint   `gorm:"index;not null"`
	Key      string `gorm:"index"`
	Value    string
}

func (TargetExtra) TableName() string { return "tom_targets_targetextra" }

type ObservationRecord struct {
	ID            uint `gorm:"primaryKey"`
	TargetID      uint `gorm:"index;not null"`
	Facility      string
	ObservationID string
	Status        string
}

func (ObservationRecord) TableName() string { return "tom_observations_observationrecord" }

type DataProduct struct {
	ID                  uint `gorm:"primaryKey"`
	TargetID            uint `gorm:"index"`
	ObservationRecordID *uint
	ProductID           string
	DataProductType     string
	Data                string
}

func (DataProduct) TableName() string { return "tom_dataproducts_dataproduct" }

// ReducedDatum is one stored measurement. Value is the JSON payload.
type ReducedDatum struct {
	ID            uint   `gorm:"primaryKey"`
	TargetID      uint   `gorm:"index;not null"`
	DataProductID *uint  `gorm:"index"`
	DataType      string `gorm:"index"`
	SourceName    string
	Timestamp     time.Time
	Value         string
}

func (ReducedDatum) TableName() string { return "tom_dataproducts_reduceddatum" }

// ReducedDatumExtra holds free-form JSON metadata about uploaded data
type ReducedDatumExtra struct {
	ID       uint `gorm:"primaryKey"`
	TargetID uint
	DataType string
	Key      string `gorm:"index"`
	Value    string
}

func (ReducedDatumExtra) TableName() string { return "custom_code_reduceddatumextra" }

type ScienceTag struct {
	ID  uint   `gorm:"primaryKey"`
	Tag string `gorm:"not null"`
}

func (ScienceTag) TableName() string { return "custom_code_sciencetags" }

type TargetTag struct {
	ID       uint `gorm:"primaryKey"`
	TargetID uint `gorm:"index;not null"`
	TagID    uint `gorm:"not null"`
}

func (TargetTag) TableName() string { return "custom_code_targettags" }

type User struct {
	ID          uint   `gorm:"primaryKey"`
	Username    string `gorm:"uniqueIndex;not null"`
	IsSuperuser bool
}

func (User) TableName() string { return "auth_user" }

type Group struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (Group) TableName() string { return "auth_group" }

type UserGroup struct {
	ID      uint `gorm:"primaryKey"`
	UserID  uint `gorm:"index;not null"`
	GroupID uint `gorm:"index;not null"`
}

func (UserGroup) TableName() string { return "auth_user_groups" }

type UserObjectPermission struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   uint   `gorm:"index;not null"`
	ObjectID uint   `gorm:"index;not null"`
	Codename string `gorm:"not null"`
}

func (UserObjectPermission) TableName() string { return "guardian_userobjectpermission" }

type GroupObjectPermission struct {
	ID       uint   `gorm:"primaryKey"`
	GroupID  uint   `gorm:"index;not null"`
	ObjectID uint   `gorm:"index;not null"`
	Codename string `gorm:"not null"`
}

func (GroupObjectPermission) TableName() string { return "guardian_groupobjectpermission" }

// AllModels lists the models in migration order
func AllModels() []any {
	return []any{
		&Target{},
		&TargetExtra{},
		&ObservationRecord{},
		&DataProduct{},
		&ReducedDatum{},
		&ReducedDatumExtra{},
		&ScienceTag{},
		&TargetTag{},
		&User{},
		&Group{},
		&UserGroup{},
		&UserObjectPermission{},
		&GroupObjectPermission{},
	}
}
