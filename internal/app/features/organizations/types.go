// internal/app/features/organizations/types.go
package organizations

import "github.com/reservehub/reservehub/internal/domain/models"

// upsertRequest is the JSON body for create and update. Absent fields
// are left untouched on update.
type upsertRequest struct {
	Name        string `json:"name"`
	TimeZone    string `json:"time_zone"`
	ContactInfo string `json:"contact_info"`
	Status      string `json:"status"`
}

// listResponse wraps one page of the organization list. Cursors are
// opaque; clients pass next_cursor as ?after= or prev_cursor as
// ?before= to move through the list.
type listResponse struct {
	Organizations []models.Organization `json:"organizations"`
	HasPrev       bool                  `json:"has_prev"`
	HasNext       bool                  `json:"has_next"`
	PrevCursor    string                `json:"prev_cursor,omitempty"`
	NextCursor    string                `json:"next_cursor,omitempty"`
}
