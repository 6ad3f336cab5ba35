package dto

type ErrorResponse struct {
	Error   bool           `json:"error"`
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	DB             string `json:"db"`
	Driver         string `json:"driver"`
	CatalogVersion int    `json:"catalog_version"`
}

// Warning reports a part of a request that was ignored rather than rejected.
type Warning struct {
	Code    string `json:"code"`
	FieldID string `json:"fieldId,omitempty"`
	Message string `json:"message"`
}

type PageQuery struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Normalize clamps the page to sane bounds.
func (q *PageQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}
