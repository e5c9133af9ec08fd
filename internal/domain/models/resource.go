// internal/domain/models/resource.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderUnset is the sentinel found in DisplayOrder on documents that were
// written without a position (imports, legacy records). The store assigns
// a real order on create, so new resources never carry it; listing treats
// it as "after every explicit order" and it is never treated as zero.
const OrderUnset int64 = -1

// Resource is a bookable asset (room, projector, vehicle) owned by one
// organization.
//
// Invariant: if ApprovalRequired is true, ManagerIDs must be non-empty.
// The resource store enforces this on every save; the booking engine
// assumes it.
type Resource struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`

	Name     string `bson:"name" json:"name"`
	NameCI   string `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Location string `bson:"location,omitempty" json:"location,omitempty"`

	// ApprovalRequired selects the booking policy: false means
	// instant-confirm, true means every booking starts pending and a
	// manager must approve it.
	ApprovalRequired bool                 `bson:"approval_required" json:"approval_required"`
	ManagerIDs       []primitive.ObjectID `bson:"manager_ids,omitempty" json:"manager_ids,omitempty"`

	DisplayOrder int64 `bson:"display_order" json:"display_order"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`

	ImagePath string `bson:"image_path,omitempty" json:"image_path,omitempty"`
	ImageName string `bson:"image_name,omitempty" json:"image_name,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ManagedBy reports whether the given user is in the resource's manager set.
func (r Resource) ManagedBy(userID primitive.ObjectID) bool {
	for _, id := range r.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
