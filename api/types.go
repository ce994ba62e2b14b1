package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler    projectHandler
	engagementHandler engagementHandler
	accountHandler    accountHandler
	tagHandler        tagHandler
	ownerHandler      ownerHandler
	healthHandler     healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// MessageResponse is returned by operations that have nothing else to report.
type MessageResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"project deleted successfully"`
}

func success(message string) MessageResponse {
	return MessageResponse{Status: "success", Message: message}
}
