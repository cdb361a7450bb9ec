package businessflow

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/snipper-app/snipper/app/dto"
	"github.com/snipper-app/snipper/config"
	"github.com/snipper-app/snipper/models"
	"github.com/snipper-app/snipper/repository"
	"github.com/snipper-app/snipper/utils"
)

// AnalyticsDateRange bounds an aggregation window. Both ends are optional and
// inclusive; End covers the whole named day.
type AnalyticsDateRange struct {
	Start *time.Time
	End   *time.Time
}

// AnalyticsFlow folds a short link's click history into a snapshot covering
// every reporting dimension. Aggregation is read-only and recomputes from the
// raw events on every call.
type AnalyticsFlow interface {
	Aggregate(ctx context.Context, shortLinkID uint, dateRange *AnalyticsDateRange) (*dto.AnalyticsSnapshotDTO, error)
	AggregateByUUID(ctx context.Context, linkUUID string, dateRange *AnalyticsDateRange) (*dto.AnalyticsSnapshotDTO, error)
	Stats(ctx context.Context, linkUUID string) (*dto.LinkStatsDTO, error)
}

type AnalyticsFlowImpl struct {
	linkRepo  repository.ShortLinkRepository
	clickRepo repository.ClickEventRepository
	baseURL   string
}

func NewAnalyticsFlow(linkRepo repository.ShortLinkRepository, clickRepo repository.ClickEventRepository, linksCfg config.LinksConfig) AnalyticsFlow {
	return &AnalyticsFlowImpl{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
		baseURL:   strings.TrimRight(linksCfg.BaseURL, "/"),
	}
}

func (f *AnalyticsFlowImpl) Aggregate(ctx context.Context, shortLinkID uint, dateRange *AnalyticsDateRange) (*dto.AnalyticsSnapshotDTO, error) {
	repoRange, err := normalizeDateRange(dateRange)
	if err != nil {
		return nil, err
	}

	events, err := f.clickRepo.ByShortLinkID(ctx, shortLinkID, repoRange)
	if err != nil {
		return nil, NewBusinessError("CLICK_EVENTS_FETCH_FAILED", "Failed to fetch click events", err)
	}

	return foldClickEvents(events), nil
}

func (f *AnalyticsFlowImpl) AggregateByUUID(ctx context.Context, linkUUID string, dateRange *AnalyticsDateRange) (*dto.AnalyticsSnapshotDTO, error) {
	link, err := f.linkRepo.ByUUID(ctx, linkUUID)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if link == nil {
		return nil, NewBusinessError("SHORT_LINK_NOT_FOUND", "Short link not found", ErrShortLinkNotFound)
	}
	return f.Aggregate(ctx, link.ID, dateRange)
}

func (f *AnalyticsFlowImpl) Stats(ctx context.Context, linkUUID string) (*dto.LinkStatsDTO, error) {
	link, err := f.linkRepo.ByUUID(ctx, linkUUID)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if link == nil {
		return nil, NewBusinessError("SHORT_LINK_NOT_FOUND", "Short link not found", ErrShortLinkNotFound)
	}

	total, err := f.clickRepo.CountByShortLinkID(ctx, link.ID, nil)
	if err != nil {
		return nil, NewBusinessError("CLICK_EVENTS_FETCH_FAILED", "Failed to count click events", err)
	}

	return &dto.LinkStatsDTO{
		ShortCode:   link.Code,
		ShortURL:    f.baseURL + "/" + link.Code,
		TotalClicks: total,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
	}, nil
}

// normalizeDateRange validates the window and widens End to the end of its
// day so a same-day range still captures that day's clicks
func normalizeDateRange(dateRange *AnalyticsDateRange) (*repository.DateRange, error) {
	if dateRange == nil || (dateRange.Start == nil && dateRange.End == nil) {
		return nil, nil
	}

	repoRange := &repository.DateRange{}
	if dateRange.Start != nil {
		repoRange.Start = *dateRange.Start
	}
	if dateRange.End != nil {
		repoRange.End = utils.EndOfDay(*dateRange.End)
	} else {
		repoRange.End = utils.EndOfDay(utils.UTCNow())
	}
	// Compare against the widened end so an intraday start on the same
	// calendar day as End is still a valid window.
	if dateRange.Start != nil && dateRange.End != nil && dateRange.Start.After(repoRange.End) {
		return nil, NewBusinessError("INVALID_DATE_RANGE", "Start date must not be after end date", ErrStartDateAfterEndDate)
	}
	return repoRange, nil
}

// foldClickEvents computes every dimension in a single pass over the events
func foldClickEvents(events []*models.ClickEvent) *dto.AnalyticsSnapshotDTO {
	snapshot := &dto.AnalyticsSnapshotDTO{
		TotalClicks:         len(events),
		ClicksByDate:        make(map[string]int),
		ClicksByCountry:     make(map[string]int),
		ClicksByCity:        make(map[string]int),
		ClicksByCountryCity: make(map[string]dto.CountryStatDTO),
		ClicksByDevice:      make(map[string]int),
		ClicksByBrowser:     make(map[string]int),
		ClicksByOS:          make(map[string]int),
		ClicksByReferrer:    make(map[string]int),
		ClicksBySource:      make(map[string]int),
		ClicksByMedium:      make(map[string]int),
		ClicksByCampaign:    make(map[string]int),
		ClicksByTerm:        make(map[string]int),
		ClicksByContent:     make(map[string]int),
		RecentClicks:        make([]dto.ClickEventDTO, 0, utils.RecentClicksLimit),
	}

	for _, event := range events {
		snapshot.ClicksByDate[utils.DateKey(event.ClickedAt)]++

		country := orUnknown(event.Country)
		city := orUnknown(event.City)
		snapshot.ClicksByCountry[country]++
		snapshot.ClicksByCity[city]++
		countryStat, ok := snapshot.ClicksByCountryCity[country]
		if !ok {
			countryStat = dto.CountryStatDTO{Cities: make(map[string]int)}
		}
		countryStat.TotalClicks++
		countryStat.Cities[city]++
		snapshot.ClicksByCountryCity[country] = countryStat

		snapshot.ClicksByDevice[orUnknown(event.Device)]++
		snapshot.ClicksByBrowser[orUnknown(event.Browser)]++
		snapshot.ClicksByOS[orUnknown(event.OS)]++

		if event.Referrer != nil && *event.Referrer != "" {
			snapshot.ClicksByReferrer[*event.Referrer]++
		} else {
			snapshot.ClicksByReferrer[utils.DirectReferrer]++
		}

		// Clicks without a campaign parameter stay out of that dimension
		countUTM(snapshot.ClicksBySource, event.UTMSource)
		countUTM(snapshot.ClicksByMedium, event.UTMMedium)
		countUTM(snapshot.ClicksByCampaign, event.UTMCampaign)
		countUTM(snapshot.ClicksByTerm, event.UTMTerm)
		countUTM(snapshot.ClicksByContent, event.UTMContent)
	}

	snapshot.RecentClicks = recentClicks(events, utils.RecentClicksLimit)
	return snapshot
}

// recentClicks returns up to limit events, newest first
func recentClicks(events []*models.ClickEvent, limit int) []dto.ClickEventDTO {
	sorted := make([]*models.ClickEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClickedAt.After(sorted[j].ClickedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	recent := make([]dto.ClickEventDTO, 0, len(sorted))
	for _, event := range sorted {
		recent = append(recent, dto.ClickEventDTO{
			ID:          event.ID,
			ClickedAt:   event.ClickedAt,
			IP:          event.IP,
			Browser:     orUnknown(event.Browser),
			OS:          orUnknown(event.OS),
			Device:      orUnknown(event.Device),
			Country:     orUnknown(event.Country),
			City:        orUnknown(event.City),
			Referrer:    event.Referrer,
			UTMSource:   event.UTMSource,
			UTMMedium:   event.UTMMedium,
			UTMCampaign: event.UTMCampaign,
		})
	}
	return recent
}

func orUnknown(value string) string {
	if value == "" {
		return utils.UnknownValue
	}
	return value
}

func countUTM(dim map[string]int, value *string) {
	if value != nil && *value != "" {
		dim[*value]++
	}
}
