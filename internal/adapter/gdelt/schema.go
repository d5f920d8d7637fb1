package gdelt

import "github.com/disasterwatch/gdelt-disaster-etl/internal/domain"

// Column indices of the GDELT 1.0 daily event export. The file is
// tab-separated with no header; every row must have exactly fieldCount
// fields. Only the columns this pipeline consumes are named here; the full
// layout is GLOBALEVENTID through SOURCEURL as documented at
// http://data.gdeltproject.org/documentation/GDELT-Data_Format_Codebook.pdf.
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

	colActor1GeoFullName    = 36
	colActor1GeoCountryCode = 37
	colActor1GeoLat         = 39
	colActor1GeoLon         = 40

	colActionGeoFullName    = 50
	colActionGeoCountryCode = 51
	colActionGeoLat         = 53
	colActionGeoLon         = 54

	colSourceURL = 57

	fieldCount = 58
)

// rowFromFields maps a full-width field slice onto the raw row type.
func rowFromFields(fields []string) domain.RawEventRow {
	return domain.RawEventRow{
		EventID:    fields[colGlobalEventID],
		Date:       fields[colSQLDate],
		Actor1Name: fields[colActor1Name],
		Actor2Name: fields[colActor2Name],
		EventCode:  fields[colEventCode],
		BaseCode:   fields[colEventBaseCode],
		RootCode:   fields[colEventRootCode],
		Goldstein:  fields[colGoldstein],
		Mentions:   fields[colNumMentions],
		Sources:    fields[colNumSources],
		Articles:   fields[colNumArticles],
		Tone:       fields[colAvgTone],

		Actor1GeoName:    fields[colActor1GeoFullName],
		Actor1GeoCountry: fields[colActor1GeoCountryCode],
		Actor1GeoLat:     fields[colActor1GeoLat],
		Actor1GeoLon:     fields[colActor1GeoLon],

		ActionGeoName:    fields[colActionGeoFullName],
		ActionGeoCountry: fields[colActionGeoCountryCode],
		ActionGeoLat:     fields[colActionGeoLat],
		ActionGeoLon:     fields[colActionGeoLon],

		SourceURL: fields[colSourceURL],
	}
}
