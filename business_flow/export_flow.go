package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/snipper-app/snipper/models"
	"github.com/snipper-app/snipper/repository"
	"github.com/xuri/excelize/v2"
)

// ExportFlow produces downloadable dumps of a short link's raw click history
type ExportFlow interface {
	DownloadClicksCSV(ctx context.Context, linkUUID string, dateRange *AnalyticsDateRange) (string, []byte, error)
	DownloadClicksExcel(ctx context.Context, linkUUID string, dateRange *AnalyticsDateRange) (string, []byte, error)
}

type ExportFlowImpl struct {
	linkRepo  repository.ShortLinkRepository
	clickRepo repository.ClickEventRepository
}

func NewExportFlow(linkRepo repository.ShortLinkRepository, clickRepo repository.ClickEventRepository) ExportFlow {
	return &ExportFlowImpl{linkRepo: linkRepo, clickRepo: clickRepo}
}

var clickExportHeader = []string{
	"id",
	"clicked_at",
	"ip",
	"user_agent",
	"browser",
	"os",
	"device",
	"country",
	"city",
	"referrer",
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
}

func (f *ExportFlowImpl) DownloadClicksCSV(ctx context.Context, linkUUID string, dateRange *AnalyticsDateRange) (string, []byte, error) {
	link, events, err := f.fetch(ctx, linkUUID, dateRange)
	if err != nil {
		return "", nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(clickExportHeader); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV header", err)
	}
	for _, event := range events {
		if err := w.Write(clickExportRecord(event)); err != nil {
			return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to flush CSV output", err)
	}

	filename := fmt.Sprintf("clicks_%s.csv", link.Code)
	return filename, buf.Bytes(), nil
}

func (f *ExportFlowImpl) DownloadClicksExcel(ctx context.Context, linkUUID string, dateRange *AnalyticsDateRange) (string, []byte, error) {
	link, events, err := f.fetch(ctx, linkUUID, dateRange)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Clicks"
	xl.SetSheetName(xl.GetSheetName(0), sheet)
	_ = xl.SetSheetRow(sheet, "A1", &clickExportHeader)

	for ri, event := range events {
		record := clickExportRecord(event)
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("clicks_%s.xlsx", link.Code)
	return filename, buf.Bytes(), nil
}

func (f *ExportFlowImpl) fetch(ctx context.Context, linkUUID string, dateRange *AnalyticsDateRange) (*models.ShortLink, []*models.ClickEvent, error) {
	link, err := f.linkRepo.ByUUID(ctx, linkUUID)
	if err != nil {
		return nil, nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if link == nil {
		return nil, nil, NewBusinessError("SHORT_LINK_NOT_FOUND", "Short link not found", ErrShortLinkNotFound)
	}

	repoRange, err := normalizeDateRange(dateRange)
	if err != nil {
		return nil, nil, err
	}

	events, err := f.clickRepo.ByShortLinkID(ctx, link.ID, repoRange)
	if err != nil {
		return nil, nil, NewBusinessError("CLICK_EVENTS_FETCH_FAILED", "Failed to fetch click events", err)
	}
	return link, events, nil
}

func clickExportRecord(event *models.ClickEvent) []string {
	return []string{
		fmt.Sprintf("%d", event.ID),
		event.ClickedAt.UTC().Format(time.RFC3339),
		event.IP,
		event.UserAgent,
		event.Browser,
		event.OS,
		event.Device,
		event.Country,
		event.City,
		derefOrEmpty(event.Referrer),
		derefOrEmpty(event.UTMSource),
		derefOrEmpty(event.UTMMedium),
		derefOrEmpty(event.UTMCampaign),
		derefOrEmpty(event.UTMTerm),
		derefOrEmpty(event.UTMContent),
	}
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
