package bookings

import "github.com/reservehub/reservehub/internal/domain/models"

type requestBody struct {
	ResourceID  string `json:"resource_id"`
	Date        string `json:"date"`
	StartPeriod int    `json:"start_period"`
	EndPeriod   int    `json:"end_period"`
	Purpose     string `json:"purpose"`
}

type updatePurposeRequest struct {
	Purpose string `json:"purpose"`
}

type listResponse struct {
	Bookings []models.Booking `json:"bookings"`
}
