package gdelt

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/domain"
)

// Client fetches one day's GDELT export archive over HTTP and returns the
// disaster-related subset of its rows. It implements ingest.Fetcher.
type Client struct {
	http    *resty.Client
	baseURL string
	rules   domain.ClassifierRules
	logger  *slog.Logger
}

// NewClient creates a feed client. The timeout bounds the whole download;
// failures are returned to the caller and never retried here.
func NewClient(baseURL string, timeout time.Duration, rules domain.ClassifierRules, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/zip")

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		rules:   rules,
		logger:  logger,
	}
}

// FetchDay retrieves, decompresses, and parses the export for the given
// calendar day, returning only rows that pass the disaster pre-filter.
// Transport failures return a *domain.FetchError; a corrupt or unexpected
// archive returns a *domain.FormatError. Rows with the wrong field count are
// counted and skipped, not fatal to the day.
func (c *Client) FetchDay(ctx context.Context, day time.Time) ([]domain.RawEventRow, error) {
	dateStr := day.UTC().Format("20060102")
	url := fmt.Sprintf("%s/%s.export.CSV.zip", c.baseURL, dateStr)

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &domain.FetchError{Date: dateStr, Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &domain.FetchError{Date: dateStr, Err: fmt.Errorf("GET %s: status %d", url, resp.StatusCode())}
	}

	content, err := extractExport(resp.Body(), dateStr)
	if err != nil {
		return nil, err
	}

	return c.parseRows(content, dateStr), nil
}

// extractExport opens the single-file ZIP archive and returns the contents
// of the day's export member.
func extractExport(archive []byte, dateStr string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, &domain.FormatError{Date: dateStr, Reason: "bad zip archive", Err: err}
	}

	member := dateStr + ".export.CSV"
	for _, f := range zr.File {
		if f.Name != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, &domain.FormatError{Date: dateStr, Reason: "open archive member", Err: err}
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, &domain.FormatError{Date: dateStr, Reason: "read archive member", Err: err}
		}
		return data, nil
	}
	return nil, &domain.FormatError{Date: dateStr, Reason: fmt.Sprintf("archive member %s not found", member)}
}

// parseRows splits the tab-separated export into raw rows, applying the
// disaster pre-filter. Wrong-width rows are skipped and reported once per
// day with a count.
func (c *Client) parseRows(content []byte, dateStr string) []domain.RawEventRow {
	var rows []domain.RawEventRow
	badRows := 0

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != fieldCount {
			badRows++
			continue
		}
		row := rowFromFields(fields)
		if c.isDisasterRelated(row) {
			rows = append(rows, row)
		}
	}

	if badRows > 0 {
		c.logger.Warn("skipped malformed feed rows",
			"date", dateStr,
			"count", badRows,
		)
	}
	c.logger.Info("feed day parsed",
		"date", dateStr,
		"disaster_rows", len(rows),
	)
	return rows
}

// isDisasterRelated is the loose pre-filter: a row qualifies when its event
// or base code is in the disaster-code table, or either actor name contains
// a disaster keyword. Recall over precision; final classification happens in
// the transformer.
func (c *Client) isDisasterRelated(row domain.RawEventRow) bool {
	if _, ok := c.rules.DisasterCodes[row.EventCode]; ok {
		return true
	}
	if _, ok := c.rules.DisasterCodes[row.BaseCode]; ok {
		return true
	}
	return len(domain.ExtractKeywords(c.rules.Keywords, row.Actor1Name, row.Actor2Name)) > 0
}
