package domain

import "context"

// CityRecord is one row of the local city table. Coordinates are optional
// until a geocoding lookup fills them in; once resolved they are written back
// so future computations skip the external call.
type CityRecord struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	CountryCode string   `json:"country_code"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

func (c *CityRecord) HasCoords() bool {
	return c.Lat != nil && c.Lng != nil
}

type CityRepository interface {
	ListAll(ctx context.Context) ([]CityRecord, error)
	UpdateCoords(ctx context.Context, id int64, lat, lng float64) error
}
