// Command genfeed writes a synthetic GDELT daily export archive for local
// testing, so the ingest command can run against a directory served by any
// static file server instead of the live feed. It uses the actual domain
// rules to guarantee the generated rows exercise both pre-filter paths
// (disaster codes and actor keywords) as well as rows the filter must drop.
//
// Usage:
//
//	go run ./cmd/genfeed -date 20250526 -out ./feed -rows 200
//	python3 -m http.server --directory ./feed 8000
//	FEED_BASE_URL=http://localhost:8000 ingest -start 20250526
package main

import (
	"archive/zip"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/domain"
)

const fieldCount = 58

// Column indices for the fields genfeed populates; everything else stays empty.
const (
	colGlobalEventID = 0
	colSQLDate       = 1
	colActor1Name    = 6
	colActor2Name    = 16
	colEventCode     = 26
	colEventBaseCode = 27
	colEventRootCode = 28
	colGoldstein     = 30
	colNumMentions   = 31
	colNumSources    = 32
	colNumArticles   = 33
	colAvgTone       = 34
	colActionGeoName = 50
	colActionGeoCC   = 51
	colActionGeoLat  = 53
	colActionGeoLon  = 54
	colSourceURL     = 57
)

var places = []struct {
	name, country string
	lat, lon      float64
}{
	{"Tokyo, Japan", "JA", 35.68, 139.69},
	{"Jakarta, Indonesia", "ID", -6.21, 106.85},
	{"Lisbon, Portugal", "PO", 38.72, -9.14},
	{"Santiago, Chile", "CI", -33.45, -70.67},
	{"New Orleans, Louisiana, United States", "US", 29.95, -90.07},
	{"Dhaka, Bangladesh", "BG", 23.81, 90.41},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dateFlag := flag.String("date", "", "feed date (YYYYMMDD, default yesterday)")
	outDir := flag.String("out", "feed", "output directory")
	rows := flag.Int("rows", 200, "total rows to generate")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	dateStr := *dateFlag
	if dateStr == "" {
		dateStr = time.Now().UTC().AddDate(0, 0, -1).Format("20060102")
	}
	if _, err := time.Parse("20060102", dateStr); err != nil {
		return fmt.Errorf("invalid -date %q: %w", dateStr, err)
	}

	rules := domain.DefaultRules()
	codes := make([]string, 0, len(rules.DisasterCodes))
	for code := range rules.DisasterCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rng := rand.New(rand.NewSource(*seed))
	var lines []string
	for i := 0; i < *rows; i++ {
		lines = append(lines, buildRow(rng, rules, codes, dateStr, i))
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(*outDir, dateStr+".export.CSV.zip")
	if err := writeArchive(path, dateStr+".export.CSV", strings.Join(lines, "\n")+"\n"); err != nil {
		return err
	}
	fmt.Printf("wrote %d rows to %s\n", *rows, path)
	return nil
}

// buildRow emits one tab-separated row. Roughly a third match by disaster
// code, a third by actor keyword, and a third should be filtered out.
func buildRow(rng *rand.Rand, rules domain.ClassifierRules, codes []string, dateStr string, i int) string {
	fields := make([]string, fieldCount)
	fields[colGlobalEventID] = strconv.Itoa(900000000 + i)
	fields[colSQLDate] = dateStr

	place := places[rng.Intn(len(places))]
	fields[colActionGeoName] = place.name
	fields[colActionGeoCC] = place.country
	fields[colActionGeoLat] = fmt.Sprintf("%.4f", place.lat+rng.Float64()-0.5)
	fields[colActionGeoLon] = fmt.Sprintf("%.4f", place.lon+rng.Float64()-0.5)

	switch i % 3 {
	case 0:
		code := codes[rng.Intn(len(codes))]
		fields[colEventCode] = code
		fields[colEventBaseCode] = code
		fields[colEventRootCode] = code[:2]
		fields[colActor1Name] = "GOVERNMENT"
	case 1:
		kw := rules.Keywords[rng.Intn(len(rules.Keywords))]
		fields[colActor1Name] = strings.ToUpper(kw) + " VICTIMS"
		fields[colActor2Name] = "RESCUE WORKERS"
		fields[colEventCode] = "010"
		fields[colEventBaseCode] = "010"
		fields[colEventRootCode] = "01"
	default:
		fields[colActor1Name] = "TRADE MINISTRY"
		fields[colEventCode] = "040"
		fields[colEventBaseCode] = "040"
		fields[colEventRootCode] = "04"
	}

	fields[colGoldstein] = fmt.Sprintf("%.1f", -10+rng.Float64()*12)
	fields[colNumMentions] = strconv.Itoa(rng.Intn(200))
	fields[colNumSources] = strconv.Itoa(1 + rng.Intn(20))
	fields[colNumArticles] = strconv.Itoa(1 + rng.Intn(50))
	fields[colAvgTone] = fmt.Sprintf("%.2f", -10+rng.Float64()*12)
	fields[colSourceURL] = fmt.Sprintf("https://news.example.com/%s/%d", dateStr, i)

	return strings.Join(fields, "\t")
}

func writeArchive(path, member, content string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create(member)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(content)); err != nil {
		return err
	}
	return zw.Close()
}
