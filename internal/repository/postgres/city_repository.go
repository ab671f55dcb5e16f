package postgres

import (
	"context"
	"fmt"

	"freelance-marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type cityRepository struct {
	db *pgxpool.Pool
}

func NewCityRepository(db *pgxpool.Pool) domain.CityRepository {
	return &cityRepository{db: db}
}

func (r *cityRepository) ListAll(ctx context.Context) ([]domain.CityRecord, error) {
	query := `SELECT id, name, COALESCE(country_code, ''), lat, lng FROM cities`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cities: %w", err)
	}
	defer rows.Close()

	var cities []domain.CityRecord
	for rows.Next() {
		var c domain.CityRecord
		if err := rows.Scan(&c.ID, &c.Name, &c.CountryCode, &c.Lat, &c.Lng); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *cityRepository) UpdateCoords(ctx context.Context, id int64, lat, lng float64) error {
	query := `UPDATE cities SET lat = $1, lng = $2 WHERE id = $3`
	_, err := r.db.Exec(ctx, query, lat, lng, id)
	return err
}
