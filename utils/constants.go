package utils

// Derivation sentinels shared across all metadata paths
const (
	// UnknownValue is the sentinel stored when a derived field (geo, browser,
	// OS, device) cannot be determined
	UnknownValue = "Unknown"

	// DirectReferrer is the sentinel used when a click carries no referrer
	DirectReferrer = "Direct"
)

// Short code constraints
const (
	// ShortCodeMinLength is the minimum length of a short code
	ShortCodeMinLength = 3

	// ShortCodeMaxLength is the maximum length of a short code
	ShortCodeMaxLength = 20
)

// Analytics constants
const (
	// RecentClicksLimit bounds the reverse-chronological recent clicks view
	RecentClicksLimit = 10
)

// Context keys for request-scoped values
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
