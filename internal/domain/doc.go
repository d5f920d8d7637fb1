// Package domain models disaster events derived from the GDELT daily export feed.
//
// # Data Source
//
// Raw events come from the GDELT 1.0 daily event export, published as a
// ZIP-compressed tab-separated file per calendar day at
// http://data.gdeltproject.org/events/YYYYMMDD.export.CSV.zip. Each line is
// one event with a fixed column layout (see the gdelt adapter for the column
// schema). The feed covers all global events; this system keeps only the
// disaster-related subset.
//
// # Disaster Classification
//
// Classification is a fixed-precedence rule chain, first match wins:
//
//  1. Exact event code match in the disaster-code table (CAMEO codes such as
//     "0231" for earthquake appeals or "190" for armed conflict).
//  2. Exact base code match in the same table.
//  3. Keyword substring match over the combined actor names, checked in a
//     fixed priority order (earthquake/quake, flood/flooding, fire/wildfire,
//     storm/hurricane/typhoon/cyclone, explosion/blast, accident/crash).
//  4. Fallback to "other". Classification is total; no event is left
//     unclassified.
//
// # Severity
//
// Severity is an additive score clamped to [1,5], built from three signals:
//
//	Goldstein scale: <= -8 adds 3, <= -5 adds 2, <= -2 adds 1.
//	Media mentions:  >= 100 adds 2, >= 50 adds 1.
//	Average tone:    <= -5 adds 1.
//
// The Goldstein scale is a [-10,10] measure of the conflictual nature of an
// event (more negative is more severe); tone is the average sentiment of the
// articles reporting it. The thresholds are part of the classifier rules and
// may be overridden by configuration, but the formula shape is a contract:
// identical inputs must always produce identical severity.
//
// # Validation
//
// A row must carry a parseable YYYYMMDD date and at least one in-range
// coordinate pair (action geography preferred, actor-1 geography as
// fallback). Rows failing either check are rejected with ErrInvalidDate or
// ErrInvalidLocation and never reach the store. Numeric fields degrade to
// zero rather than rejecting the row.
//
// # Identity
//
// The GDELT GLOBALEVENTID is the natural key. Upserts replace by event_id,
// so re-ingesting a day is idempotent and a corrected feed updates records
// in place instead of duplicating them.
package domain
