package businessflow

import (
	"context"

	"github.com/snipper-app/snipper/app/services"
	"github.com/snipper-app/snipper/models"
	"github.com/snipper-app/snipper/repository"
)

// syncDetach runs detached tasks inline so tests observe their side effects
func syncDetach(name string, fn func(ctx context.Context)) {
	fn(context.Background())
}

type fakeShortLinkRepo struct {
	byCode map[string]*models.ShortLink
	byUUID map[string]*models.ShortLink
	err    error
}

func newFakeShortLinkRepo(links ...*models.ShortLink) *fakeShortLinkRepo {
	repo := &fakeShortLinkRepo{
		byCode: make(map[string]*models.ShortLink),
		byUUID: make(map[string]*models.ShortLink),
	}
	for _, link := range links {
		repo.byCode[link.Code] = link
		repo.byUUID[link.UUID.String()] = link
	}
	return repo
}

func (r *fakeShortLinkRepo) ByID(ctx context.Context, id uint) (*models.ShortLink, error) {
	for _, link := range r.byCode {
		if link.ID == id {
			return link, nil
		}
	}
	return nil, nil
}

func (r *fakeShortLinkRepo) ByFilter(ctx context.Context, filter models.ShortLinkFilter, orderBy string, limit, offset int) ([]*models.ShortLink, error) {
	return nil, nil
}

func (r *fakeShortLinkRepo) Save(ctx context.Context, entity *models.ShortLink) error {
	r.byCode[entity.Code] = entity
	r.byUUID[entity.UUID.String()] = entity
	return nil
}

func (r *fakeShortLinkRepo) SaveBatch(ctx context.Context, entities []*models.ShortLink) error {
	for _, entity := range entities {
		if err := r.Save(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeShortLinkRepo) Count(ctx context.Context, filter models.ShortLinkFilter) (int64, error) {
	return int64(len(r.byCode)), nil
}

func (r *fakeShortLinkRepo) Exists(ctx context.Context, filter models.ShortLinkFilter) (bool, error) {
	return len(r.byCode) > 0, nil
}

func (r *fakeShortLinkRepo) ByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.byCode[code], nil
}

func (r *fakeShortLinkRepo) ByUUID(ctx context.Context, uuid string) (*models.ShortLink, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.byUUID[uuid], nil
}

type fakeClickEventRepo struct {
	saved     []*models.ClickEvent
	events    []*models.ClickEvent
	lastRange *repository.DateRange
	err       error
}

func (r *fakeClickEventRepo) ByID(ctx context.Context, id uint) (*models.ClickEvent, error) {
	return nil, nil
}

func (r *fakeClickEventRepo) ByFilter(ctx context.Context, filter models.ClickEventFilter, orderBy string, limit, offset int) ([]*models.ClickEvent, error) {
	return r.events, nil
}

func (r *fakeClickEventRepo) Save(ctx context.Context, entity *models.ClickEvent) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, entity)
	return nil
}

func (r *fakeClickEventRepo) SaveBatch(ctx context.Context, entities []*models.ClickEvent) error {
	r.saved = append(r.saved, entities...)
	return nil
}

func (r *fakeClickEventRepo) Count(ctx context.Context, filter models.ClickEventFilter) (int64, error) {
	return int64(len(r.events)), nil
}

func (r *fakeClickEventRepo) Exists(ctx context.Context, filter models.ClickEventFilter) (bool, error) {
	return len(r.events) > 0, nil
}

func (r *fakeClickEventRepo) ByShortLinkID(ctx context.Context, shortLinkID uint, dateRange *repository.DateRange) ([]*models.ClickEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.lastRange = dateRange
	if dateRange == nil {
		return r.events, nil
	}
	var filtered []*models.ClickEvent
	for _, event := range r.events {
		if !dateRange.Start.IsZero() && event.ClickedAt.Before(dateRange.Start) {
			continue
		}
		if event.ClickedAt.After(dateRange.End) {
			continue
		}
		filtered = append(filtered, event)
	}
	return filtered, nil
}

func (r *fakeClickEventRepo) CountByShortLinkID(ctx context.Context, shortLinkID uint, dateRange *repository.DateRange) (int64, error) {
	events, err := r.ByShortLinkID(ctx, shortLinkID, dateRange)
	if err != nil {
		return 0, err
	}
	return int64(len(events)), nil
}

type fakeGeoService struct {
	location services.Location
	calls    int
}

func (s *fakeGeoService) Resolve(ctx context.Context, headers services.EdgeGeoHeaders) services.Location {
	s.calls++
	if headers.Country != "" {
		return services.Location{Country: headers.Country, City: headers.City}
	}
	return s.location
}

type fakeUserAgentParser struct {
	info services.DeviceInfo
}

func (p *fakeUserAgentParser) Parse(rawUA string) services.DeviceInfo {
	return p.info
}

// recordingLinkCache captures Set calls and serves Get hits from memory
type recordingLinkCache struct {
	entries map[string]*models.ShortLink
	sets    int
}

func newRecordingLinkCache() *recordingLinkCache {
	return &recordingLinkCache{entries: make(map[string]*models.ShortLink)}
}

func (c *recordingLinkCache) Get(ctx context.Context, code string) (*models.ShortLink, bool) {
	link, ok := c.entries[code]
	return link, ok
}

func (c *recordingLinkCache) Set(ctx context.Context, link *models.ShortLink) {
	c.entries[link.Code] = link
	c.sets++
}

func (c *recordingLinkCache) Invalidate(ctx context.Context, code string) error {
	delete(c.entries, code)
	return nil
}
