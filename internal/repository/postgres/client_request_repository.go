package postgres

import (
	"context"
	"errors"
	"fmt"

	"freelance-marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type clientRequestRepository struct {
	db *pgxpool.Pool
}

func NewClientRequestRepository(db *pgxpool.Pool) domain.ClientRequestRepository {
	return &clientRequestRepository{db: db}
}

func (r *clientRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ClientRequest, error) {
	query := `
		SELECT id, kind, COALESCE(location_mode, 'REMOTE'), city_id,
		       remote_days_count, tjm_min, tjm_max, start_date,
		       skills_weight, tjm_weight, telework_weight, availability_weight
		FROM client_requests WHERE id = $1`

	var cr domain.ClientRequest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&cr.ID, &cr.Kind, &cr.LocationMode, &cr.CityID,
		&cr.RemoteDaysCount, &cr.TJMMin, &cr.TJMMax, &cr.StartDate,
		&cr.SkillsWeight, &cr.TJMWeight, &cr.TeleworkWeight, &cr.AvailabilityWeight,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	techQuery := `
		SELECT name, COALESCE(level, ''), COALESCE(weight, 1)
		FROM client_request_technologies
		WHERE request_id = $1
		ORDER BY weight DESC, name`

	rows, err := r.db.Query(ctx, techQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request technologies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.RequestTechnology
		if err := rows.Scan(&t.Name, &t.Level, &t.Weight); err != nil {
			return nil, err
		}
		cr.Technologies = append(cr.Technologies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cr, nil
}
