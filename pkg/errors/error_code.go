package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidInterval      ErrorCode = 102
	ErrCodeInvalidWindow        ErrorCode = 103
	ErrCodeInvalidKind          ErrorCode = 104

	// Data/Resource errors (200-299)
	ErrCodeNoData                ErrorCode = 200
	ErrCodeMissingFields         ErrorCode = 201
	ErrCodeInsufficientData      ErrorCode = 202
	ErrCodeEmptyAfterWarmup      ErrorCode = 203
	ErrCodeQueryFailed           ErrorCode = 204
	ErrCodeDataSourceUnavailable ErrorCode = 205
	ErrCodeDataParseFailed       ErrorCode = 206

	// Market data download errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeInvalidTimespan       ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703
)
