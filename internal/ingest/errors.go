package ingest

// IngestError represents recording ingestion errors
type IngestError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *IngestError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *IngestError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeOpen       = "OPEN_FAILED"
	ErrCodeParse      = "PARSE_FAILED"
	ErrCodeFormat     = "INVALID_FORMAT"
	ErrCodeTooShort   = "TOO_SHORT"
	ErrCodeExtraction = "EXTRACTION_FAILED"
)

// NewIngestError creates a new ingestion error
func NewIngestError(file, code, message string, cause error) *IngestError {
	return &IngestError{
		File:    file,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
