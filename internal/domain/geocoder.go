package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Confidence  float64 // 0.0–1.0 provider importance score
}

// LocationResolver turns a free-text place query into coordinates. It
// returns ErrLocationNotFound when nothing matches.
type LocationResolver interface {
	Resolve(ctx context.Context, query string) (GeocodingResult, error)
}

// SeriesProvider fetches the daily history of a point for the inclusive
// range of calendar years.
type SeriesProvider interface {
	FetchSeries(ctx context.Context, loc Location, startYear, endYear int) (RawSeries, error)
}
