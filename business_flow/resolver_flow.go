package businessflow

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/snipper-app/snipper/app/services"
	"github.com/snipper-app/snipper/config"
	"github.com/snipper-app/snipper/models"
	"github.com/snipper-app/snipper/repository"
	"github.com/snipper-app/snipper/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	resolveOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolve_outcomes_total",
			Help: "Total short link resolutions partitioned by outcome",
		},
		[]string{"outcome"},
	)

	clickRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "click_records_total",
			Help: "Total click recording attempts partitioned by status",
		},
		[]string{"status"},
	)
)

var shortCodePattern = regexp.MustCompile(fmt.Sprintf(
	`^[A-Za-z0-9_-]{%d,%d}$`, utils.ShortCodeMinLength, utils.ShortCodeMaxLength))

// ResolveDecision identifies the terminal outcome of a resolution
type ResolveDecision string

const (
	DecisionNotFound         ResolveDecision = "not_found"
	DecisionExpired          ResolveDecision = "expired"
	DecisionPasswordRequired ResolveDecision = "password_required"
	DecisionRedirect         ResolveDecision = "redirect"
)

// ResolveOutcome is the result of resolving a short code. Exactly one of the
// four decisions applies; DestinationURL is set only for DecisionRedirect.
type ResolveOutcome struct {
	Decision       ResolveDecision
	ShortCode      string
	DestinationURL string
}

// VerifyOutcome is the result of a password verification attempt. Message is
// textually identical for every failure cause so callers cannot distinguish an
// unknown code from a wrong password.
type VerifyOutcome struct {
	Success        bool
	DestinationURL string
	Message        string
}

// VerifyFailureMessage is the single generic message returned on every
// verification failure
const VerifyFailureMessage = "Invalid short link or password"

// ResolverFlow decides, for an inbound short code, whether a redirect should
// occur now, after password entry, or not at all, and schedules click
// recording without blocking the decision.
// Each call is independent and never mutates the short link.
// Public flow, no authentication required.
type ResolverFlow interface {
	Resolve(ctx context.Context, shortCode string, client *ClientMetadata) (*ResolveOutcome, error)
	VerifyPassword(ctx context.Context, shortCode, password string, client *ClientMetadata) (*VerifyOutcome, error)
}

type ResolverFlowImpl struct {
	linkRepo  repository.ShortLinkRepository
	clickRepo repository.ClickEventRepository
	geo       services.GeoService
	uaParser  services.UserAgentParser
	cache     services.LinkCache
	reserved  map[string]string
	detach    DetachFunc
}

func NewResolverFlow(
	linkRepo repository.ShortLinkRepository,
	clickRepo repository.ClickEventRepository,
	geo services.GeoService,
	uaParser services.UserAgentParser,
	cache services.LinkCache,
	linksCfg config.LinksConfig,
	detach DetachFunc,
) ResolverFlow {
	return &ResolverFlowImpl{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
		geo:       geo,
		uaParser:  uaParser,
		cache:     cache,
		reserved:  linksCfg.ReservedCodes,
		detach:    detach,
	}
}

func (f *ResolverFlowImpl) Resolve(ctx context.Context, shortCode string, client *ClientMetadata) (*ResolveOutcome, error) {
	if !shortCodePattern.MatchString(shortCode) {
		resolveOutcomesTotal.WithLabelValues(string(DecisionNotFound)).Inc()
		return &ResolveOutcome{Decision: DecisionNotFound, ShortCode: shortCode}, nil
	}

	// Reserved demo codes bypass persistence entirely and record no click
	if dest, ok := f.reserved[shortCode]; ok {
		resolveOutcomesTotal.WithLabelValues(string(DecisionRedirect)).Inc()
		return &ResolveOutcome{Decision: DecisionRedirect, ShortCode: shortCode, DestinationURL: dest}, nil
	}

	link, err := f.lookup(ctx, shortCode)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if link == nil {
		resolveOutcomesTotal.WithLabelValues(string(DecisionNotFound)).Inc()
		return &ResolveOutcome{Decision: DecisionNotFound, ShortCode: shortCode}, nil
	}

	if link.ExpiresAt != nil && utils.IsExpiredAt(*link.ExpiresAt, utils.UTCNow()) {
		resolveOutcomesTotal.WithLabelValues(string(DecisionExpired)).Inc()
		return &ResolveOutcome{Decision: DecisionExpired, ShortCode: shortCode}, nil
	}

	if link.IsProtected() {
		resolveOutcomesTotal.WithLabelValues(string(DecisionPasswordRequired)).Inc()
		return &ResolveOutcome{Decision: DecisionPasswordRequired, ShortCode: shortCode}, nil
	}

	f.recordClick(link, client)
	resolveOutcomesTotal.WithLabelValues(string(DecisionRedirect)).Inc()
	return &ResolveOutcome{Decision: DecisionRedirect, ShortCode: shortCode, DestinationURL: link.OriginalURL}, nil
}

func (f *ResolverFlowImpl) VerifyPassword(ctx context.Context, shortCode, password string, client *ClientMetadata) (*VerifyOutcome, error) {
	failure := &VerifyOutcome{Success: false, Message: VerifyFailureMessage}

	if !shortCodePattern.MatchString(shortCode) || password == "" {
		return failure, nil
	}

	// The cache strips password hashes, so verification always reads the store
	link, err := f.linkRepo.ByCode(ctx, shortCode)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if link == nil || !link.IsProtected() {
		return failure, nil
	}
	if link.ExpiresAt != nil && utils.IsExpiredAt(*link.ExpiresAt, utils.UTCNow()) {
		return failure, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte(password)); err != nil {
		return failure, nil
	}

	f.recordClick(link, client)
	return &VerifyOutcome{Success: true, DestinationURL: link.OriginalURL}, nil
}

// lookup reads through the external cache when one is configured. Protected
// links are never cached: the serialized form drops the password hash.
func (f *ResolverFlowImpl) lookup(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	if cached, ok := f.cache.Get(ctx, shortCode); ok {
		return cached, nil
	}
	link, err := f.linkRepo.ByCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if link != nil && !link.IsProtected() {
		f.cache.Set(ctx, link)
	}
	return link, nil
}

// recordClick schedules metadata derivation and click persistence as a
// fire-and-forget side effect. The redirect decision never waits on it and
// never observes its failures.
func (f *ResolverFlowImpl) recordClick(link *models.ShortLink, client *ClientMetadata) {
	if client == nil {
		client = NewClientMetadata("", "")
	}
	clickedAt := utils.UTCNow()
	meta := *client
	linkID := link.ID
	originalURL := link.OriginalURL

	f.detach("record_click", func(ctx context.Context) {
		device := f.uaParser.Parse(meta.UserAgent)
		location := f.geo.Resolve(ctx, services.EdgeGeoHeaders{
			Country: meta.EdgeCountry,
			City:    meta.EdgeCity,
		})

		event := &models.ClickEvent{
			ShortLinkID: linkID,
			IP:          meta.IPAddress,
			UserAgent:   meta.UserAgent,
			Browser:     device.Browser,
			OS:          device.OS,
			Device:      device.Device,
			Referrer:    normalizeReferrer(meta.Referrer),
			Country:     location.Country,
			City:        location.City,
			ClickedAt:   clickedAt,
		}
		applyUTMParams(event, originalURL)

		if err := f.clickRepo.Save(ctx, event); err != nil {
			clickRecordsTotal.WithLabelValues("error").Inc()
			log.Printf("failed to record click for short link %d: %v", linkID, err)
			return
		}
		clickRecordsTotal.WithLabelValues("ok").Inc()
	})
}

func normalizeReferrer(referrer string) *string {
	if referrer == "" {
		return nil
	}
	return &referrer
}

// applyUTMParams captures campaign parameters from the destination URL query
// string at record time
func applyUTMParams(event *models.ClickEvent, destinationURL string) {
	parsed, err := url.Parse(destinationURL)
	if err != nil {
		return
	}
	query := parsed.Query()
	event.UTMSource = utmValue(query, "utm_source")
	event.UTMMedium = utmValue(query, "utm_medium")
	event.UTMCampaign = utmValue(query, "utm_campaign")
	event.UTMTerm = utmValue(query, "utm_term")
	event.UTMContent = utmValue(query, "utm_content")
}

func utmValue(query url.Values, key string) *string {
	if v := query.Get(key); v != "" {
		return &v
	}
	return nil
}
