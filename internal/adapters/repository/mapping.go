package repository

import "github.com/CuSO4Deposit/arctrack/internal/domain/model"

// RowFromRecord maps a domain record to the persisted shape. Derived
// display fields are dropped; only the stored rating survives.
func RowFromRecord(r model.PlayRecord) Row {
	return Row{
		SongID:      r.Chart.SongID,
		RatingClass: r.Chart.RatingClass,
		Pure:        r.Pure,
		MaxPure:     r.MaxPure,
		Far:         r.Far,
		PlayPtt:     r.PlayRating,
		Time:        r.Time,
		User:        r.User,
	}
}

// RecordFromRow maps a persisted row back to a domain record. Fields
// derived from chart metadata (note count, base rating, name, score)
// stay zero until the caller enriches them; the eviction policies only
// depend on identity, counts, rating and time.
func RecordFromRow(row Row) model.PlayRecord {
	return model.PlayRecord{
		User:       row.User,
		Chart:      model.ChartID{SongID: row.SongID, RatingClass: row.RatingClass},
		Time:       row.Time,
		Pure:       row.Pure,
		MaxPure:    row.MaxPure,
		Far:        row.Far,
		PlayRating: row.PlayPtt,
	}
}

// RecordsFromRows maps a snapshot preserving the store's query order.
func RecordsFromRows(rows []Row) []model.PlayRecord {
	out := make([]model.PlayRecord, len(rows))
	for i, row := range rows {
		out[i] = RecordFromRow(row)
	}
	return out
}
