package features

import "github.com/yourusername/f1-form/internal/models"

// LatestByDriver picks each driver's most recent engineered record by (season, round)
func LatestByDriver(records []models.EngineeredRecord) map[string]models.EngineeredRecord {
	latest := make(map[string]models.EngineeredRecord)
	for _, rec := range records {
		cur, ok := latest[rec.DriverID]
		if !ok || cur.Key().Before(rec.Key()) {
			latest[rec.DriverID] = rec
		}
	}
	return latest
}
