package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonInvalidInput ReasonCode = "invalid_input"
	ReasonConfig       ReasonCode = "config"

	ReasonBackendGenerate  ReasonCode = "backend_generate"
	ReasonBackendRateLimit ReasonCode = "backend_rate_limit"
	ReasonRoundLimit       ReasonCode = "round_limit"

	ReasonImageGenerate ReasonCode = "image_generate"
	ReasonImageNoData   ReasonCode = "image_no_data"
)
