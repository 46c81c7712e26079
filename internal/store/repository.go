package store

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ReducedDataQuery selects the reduced data of one target
type ReducedDataQuery struct {
	TargetID      uint
	DataType      string
	DataProductID *uint

	// CheckPermissions limits the result to data Viewer holds
	// view_reduceddatum on. A nil Viewer is anonymous and sees nothing.
	CheckPermissions bool
	Viewer           *User
}

// Repository is the read access the fragment builders need
type Repository interface {
	Target(ctx context.Context, id uint) (*Target, error)
	ObservationRecord(ctx context.Context, id uint) (*ObservationRecord, error)
	DataProduct(ctx context.Context, id uint) (*DataProduct, error)
	UserByName(ctx context.Context, username string) (*User, error)

	ReducedData(ctx context.Context, q ReducedDataQuery) ([]ReducedDatum, error)
	DataProductIDs(ctx context.Context, targetID uint, dataType string) ([]uint, error)
	ReducedDatumExtras(ctx context.Context, key, dataType string) ([]ReducedDatumExtra, error)

	TargetExtra(ctx context.Context, targetID uint, key string) (*TargetExtra, error)
	ScienceTags(ctx context.Context) ([]ScienceTag, error)
	TargetTagNames(ctx context.Context, targetID uint) ([]string, error)

	Groups(ctx context.Context) ([]Group, error)
	UserGroups(ctx context.Context, userID uint) ([]Group, error)
	GroupsWithPermission(ctx context.Context, codename string, objectID uint) ([]Group, error)
}
