package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateReviewRequest struct {
	SchoolCode string `json:"school_code"`
	OfficeCode string `json:"office_code"`
	MealDate   string `json:"meal_date"`
	MealType   string `json:"meal_type"`
	Rating     int    `json:"rating"`
	Content    string `json:"content,omitempty"`
}

type UpdateSchoolRequest struct {
	SchoolCode string `json:"school_code"`
	OfficeCode string `json:"office_code"`
	SchoolName string `json:"school_name"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
