package dashboard

import (
	"github.com/reservehub/reservehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type summaryResponse struct {
	OrganizationID primitive.ObjectID `json:"organization_id"`
	Date           string             `json:"date"`
	TodayBookings  int64              `json:"today_bookings"`
	FromCache      bool               `json:"from_cache"`

	PendingCount     int              `json:"pending_count"`
	PendingApprovals []models.Booking `json:"pending_approvals,omitempty"`
}
