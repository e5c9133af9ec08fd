package resources

import "github.com/reservehub/reservehub/internal/domain/models"

type upsertRequest struct {
	Name             string   `json:"name"`
	Location         string   `json:"location"`
	Description      string   `json:"description"`
	ApprovalRequired *bool    `json:"approval_required"`
	ManagerIDs       []string `json:"manager_ids"`
}

// ApprovalRequiredSet reports whether the request carried the
// approval_required field at all; PATCH leaves it unchanged otherwise.
func (r upsertRequest) ApprovalRequiredSet() bool {
	return r.ApprovalRequired != nil
}

type swapOrderRequest struct {
	OtherID string `json:"other_id"`
}

type listResponse struct {
	Resources []models.Resource `json:"resources"`
}

type uploadResponse struct {
	Path        string `json:"path"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}
