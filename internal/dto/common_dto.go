package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Storage   string `json:"storage"`
}

// NameRequest is the body for creating or renaming a tag or location.
type NameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}
