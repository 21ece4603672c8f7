package utils

// Application constants
const (
	// Application name
	AppName = "ExamSutra"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100
)

// Error messages
const (
	ErrUnauthorized     = "Unauthorized access"
	ErrForbidden        = "Access forbidden"
	ErrRecordNotFound   = "Record not found"
	ErrInternalServer   = "Internal server error"
	ErrInvalidItemType  = "Invalid item type"
	ErrAlreadyPurchased = "You already have an active purchase for this item"
)
