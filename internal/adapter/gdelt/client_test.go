package gdelt

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/domain"
)

var testDay = time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)

// exportRow builds a full-width tab-separated feed row with the given columns set.
func exportRow(t *testing.T, cols map[int]string) string {
	t.Helper()
	fields := make([]string, fieldCount)
	for i, v := range cols {
		require.Less(t, i, fieldCount)
		fields[i] = v
	}
	return strings.Join(fields, "\t")
}

func zipArchive(t *testing.T, member string, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(member)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func feedServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/20250526.export.CSV.zip", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, domain.DefaultRules(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchDay_FiltersDisasterRows(t *testing.T) {
	rows := strings.Join([]string{
		// Kept: exact disaster event code.
		exportRow(t, map[int]string{colGlobalEventID: "1", colEventCode: "0231"}),
		// Kept: base code in the table.
		exportRow(t, map[int]string{colGlobalEventID: "2", colEventCode: "1451", colEventBaseCode: "145"}),
		// Kept: actor keyword match.
		exportRow(t, map[int]string{colGlobalEventID: "3", colEventCode: "010", colActor1Name: "FLOOD VICTIMS"}),
		// Dropped: nothing disaster-related.
		exportRow(t, map[int]string{colGlobalEventID: "4", colEventCode: "010", colActor1Name: "GOVERNMENT"}),
	}, "\n")
	srv := feedServer(t, http.StatusOK, zipArchive(t, "20250526.export.CSV", rows+"\n"))

	got, err := newTestClient(srv.URL).FetchDay(context.Background(), testDay)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].EventID)
	assert.Equal(t, "2", got[1].EventID)
	assert.Equal(t, "3", got[2].EventID)
}

func TestFetchDay_SkipsWrongWidthRows(t *testing.T) {
	content := strings.Join([]string{
		exportRow(t, map[int]string{colGlobalEventID: "1", colEventCode: "0231"}),
		"too\tfew\tfields",
		exportRow(t, map[int]string{colGlobalEventID: "2", colEventCode: "0232"}) + "\textra",
		"",
		exportRow(t, map[int]string{colGlobalEventID: "3", colEventCode: "0238"}) + "\r",
	}, "\n")
	srv := feedServer(t, http.StatusOK, zipArchive(t, "20250526.export.CSV", content))

	got, err := newTestClient(srv.URL).FetchDay(context.Background(), testDay)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].EventID)
	assert.Equal(t, "3", got[1].EventID)
}

func TestFetchDay_MapsColumns(t *testing.T) {
	row := exportRow(t, map[int]string{
		colGlobalEventID:        "987654",
		colSQLDate:              "20250526",
		colActor1Name:           "EARTHQUAKE SURVIVORS",
		colActor2Name:           "RED CROSS",
		colEventCode:            "0231",
		colEventBaseCode:        "023",
		colEventRootCode:        "02",
		colGoldstein:            "-9.0",
		colNumMentions:          "120",
		colNumSources:           "12",
		colNumArticles:          "45",
		colAvgTone:              "-6.5",
		colActionGeoFullName:    "Tokyo, Japan",
		colActionGeoCountryCode: "JA",
		colActionGeoLat:         "35.6894",
		colActionGeoLon:         "139.6917",
		colSourceURL:            "https://news.example.com/quake",
	})
	srv := feedServer(t, http.StatusOK, zipArchive(t, "20250526.export.CSV", row))

	got, err := newTestClient(srv.URL).FetchDay(context.Background(), testDay)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, domain.RawEventRow{
		EventID:          "987654",
		Date:             "20250526",
		Actor1Name:       "EARTHQUAKE SURVIVORS",
		Actor2Name:       "RED CROSS",
		EventCode:        "0231",
		BaseCode:         "023",
		RootCode:         "02",
		Goldstein:        "-9.0",
		Mentions:         "120",
		Sources:          "12",
		Articles:         "45",
		Tone:             "-6.5",
		ActionGeoName:    "Tokyo, Japan",
		ActionGeoCountry: "JA",
		ActionGeoLat:     "35.6894",
		ActionGeoLon:     "139.6917",
		SourceURL:        "https://news.example.com/quake",
	}, got[0])
}

func TestFetchDay_MissingArchive(t *testing.T) {
	srv := feedServer(t, http.StatusNotFound, []byte("not found"))

	_, err := newTestClient(srv.URL).FetchDay(context.Background(), testDay)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "20250526", fetchErr.Date)
	assert.Contains(t, fetchErr.Error(), "status 404")
}

func TestFetchDay_TransportFailure(t *testing.T) {
	srv := feedServer(t, http.StatusOK, nil)
	srv.Close()

	_, err := newTestClient(srv.URL).FetchDay(context.Background(), testDay)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetchDay_CorruptArchive(t *testing.T) {
	srv := feedServer(t, http.StatusOK, []byte("this is not a zip file"))

	_, err := newTestClient(srv.URL).FetchDay(context.Background(), testDay)
	var formatErr *domain.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Error(), "bad zip archive")
}

func TestFetchDay_WrongArchiveMember(t *testing.T) {
	srv := feedServer(t, http.StatusOK, zipArchive(t, "README.txt", "wrong file"))

	_, err := newTestClient(srv.URL).FetchDay(context.Background(), testDay)
	var formatErr *domain.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Error(), "20250526.export.CSV not found")
}

func TestFetchDay_ContextCancelled(t *testing.T) {
	srv := feedServer(t, http.StatusOK, zipArchive(t, "20250526.export.CSV", ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(srv.URL).FetchDay(ctx, testDay)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, errors.Is(fetchErr.Err, context.Canceled) ||
		strings.Contains(fetchErr.Err.Error(), "context canceled"),
		fmt.Sprintf("unexpected error: %v", fetchErr.Err))
}
