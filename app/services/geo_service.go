package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/snipper-app/snipper/config"
	"github.com/snipper-app/snipper/utils"
)

var geoLookupDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "geo_lookup_duration_seconds",
		Help:    "Latency of external geo lookup calls",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"step", "outcome"},
)

// Location holds the country and city derived for a click. Either field falls
// back to the "Unknown" sentinel when it cannot be determined.
type Location struct {
	Country string
	City    string
}

// EdgeGeoHeaders carries the CDN/edge-provided geo headers for a request.
// Values may be URL-encoded by the edge.
type EdgeGeoHeaders struct {
	Country string
	City    string
}

// GeoService resolves the location of a click. Edge headers win when present;
// otherwise two chained HTTP calls run (public-IP discovery, then IP-to-geo),
// each bounded by the configured timeout. Failures never propagate: every
// failure path yields the "Unknown" sentinel.
type GeoService interface {
	Resolve(ctx context.Context, headers EdgeGeoHeaders) Location
}

type GeoServiceImpl struct {
	config *config.GeoConfig
	client *http.Client
}

// publicIPResponse is the payload of the public-IP discovery endpoint
type publicIPResponse struct {
	IP string `json:"ip"`
}

// geoIPResponse is the payload of the IP-to-geo endpoint
type geoIPResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

func NewGeoService(cfg *config.GeoConfig) GeoService {
	return &GeoServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.LookupTimeout,
		},
	}
}

func (s *GeoServiceImpl) Resolve(ctx context.Context, headers EdgeGeoHeaders) Location {
	loc := Location{Country: utils.UnknownValue, City: utils.UnknownValue}

	if headers.Country != "" || headers.City != "" {
		if headers.Country != "" {
			loc.Country = decodeEdgeHeader(headers.Country)
		}
		if headers.City != "" {
			loc.City = decodeEdgeHeader(headers.City)
		}
		return loc
	}

	ip, err := s.lookupPublicIP(ctx)
	if err != nil {
		return loc
	}

	country, city, err := s.lookupGeoIP(ctx, ip)
	if err != nil {
		return loc
	}
	if country != "" {
		loc.Country = country
	}
	if city != "" {
		loc.City = city
	}
	return loc
}

// decodeEdgeHeader URL-decodes an edge geo header, falling back to the raw
// value when decoding fails
func decodeEdgeHeader(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}

func (s *GeoServiceImpl) lookupPublicIP(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.LookupTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.PublicIPLookupURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create public IP request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		geoLookupDuration.WithLabelValues("public_ip", "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("public IP lookup failed: %w", err)
	}
	defer resp.Body.Close()

	var payload publicIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		geoLookupDuration.WithLabelValues("public_ip", "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("failed to decode public IP response: %w", err)
	}
	if payload.IP == "" {
		geoLookupDuration.WithLabelValues("public_ip", "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("public IP lookup returned empty IP")
	}

	geoLookupDuration.WithLabelValues("public_ip", "ok").Observe(time.Since(start).Seconds())
	return payload.IP, nil
}

func (s *GeoServiceImpl) lookupGeoIP(ctx context.Context, ip string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.LookupTimeout)
	defer cancel()

	start := time.Now()
	lookupURL := fmt.Sprintf(s.config.GeoIPLookupURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create geo IP request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		geoLookupDuration.WithLabelValues("geo_ip", "error").Observe(time.Since(start).Seconds())
		return "", "", fmt.Errorf("geo IP lookup failed: %w", err)
	}
	defer resp.Body.Close()

	var payload geoIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		geoLookupDuration.WithLabelValues("geo_ip", "error").Observe(time.Since(start).Seconds())
		return "", "", fmt.Errorf("failed to decode geo IP response: %w", err)
	}
	if payload.Status != "" && payload.Status != "success" {
		geoLookupDuration.WithLabelValues("geo_ip", "error").Observe(time.Since(start).Seconds())
		return "", "", fmt.Errorf("geo IP lookup returned status %q", payload.Status)
	}

	geoLookupDuration.WithLabelValues("geo_ip", "ok").Observe(time.Since(start).Seconds())
	return payload.Country, payload.City, nil
}
