// Package businessflow contains the core business logic for short link resolution and click analytics
package businessflow

import (
	"context"
	"log"
	"time"
)

// ClientMetadata holds all click-relevant request information supplied by the
// HTTP layer. Edge geo headers may be URL-encoded; decoding happens during
// metadata derivation, not here.
type ClientMetadata struct {
	IPAddress   string `json:"ip_address"`
	UserAgent   string `json:"user_agent"`
	Referrer    string `json:"referrer,omitempty"`
	EdgeCountry string `json:"edge_country,omitempty"`
	EdgeCity    string `json:"edge_city,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// DetachFunc schedules fn decoupled from the caller's request lifecycle.
// The contract is fire-and-forget: errors and panics inside fn are logged and
// swallowed, never retried, never surfaced to the caller.
type DetachFunc func(name string, fn func(ctx context.Context))

// SpawnDetached returns the production DetachFunc: each task runs in its own
// goroutine with a fresh context bounded by timeout.
func SpawnDetached(timeout time.Duration) DetachFunc {
	return func(name string, fn func(ctx context.Context)) {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in detached task %s: %v", name, r)
				}
			}()
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			fn(ctx)
		}()
	}
}
