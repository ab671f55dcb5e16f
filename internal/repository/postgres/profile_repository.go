package postgres

import (
	"context"
	"fmt"

	"freelance-marketplace-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type profileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepository{db: db}
}

// ListAll loads the full candidate pool in four queries: core profiles with
// address, experience domains, completed-work technologies and declared
// services. Evidence is attached in memory keyed by user id.
func (r *profileRepository) ListAll(ctx context.Context) ([]domain.CandidateProfile, error) {
	profileQuery := `
		SELECT p.user_id, COALESCE(a.city, ''), COALESCE(a.country, ''),
		       p.small_day_rate, p.high_day_rate, p.telework_days,
		       p.available_date, COALESCE(p.is_employed, FALSE)
		FROM profiles p
		LEFT JOIN addresses a ON a.user_id = p.user_id
		ORDER BY p.user_id`

	rows, err := r.db.Query(ctx, profileQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.CandidateProfile
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var p domain.CandidateProfile
		err := rows.Scan(
			&p.UserID, &p.City, &p.Country,
			&p.SmallDayRate, &p.HighDayRate, &p.TeleworkDays,
			&p.AvailableDate, &p.IsEmployed,
		)
		if err != nil {
			return nil, err
		}
		index[p.UserID] = len(profiles)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	expQuery := `SELECT user_id, COALESCE(domains, '{}') FROM experiences`
	expRows, err := r.db.Query(ctx, expQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch experiences: %w", err)
	}
	defer expRows.Close()

	for expRows.Next() {
		var userID uuid.UUID
		var domains []string
		if err := expRows.Scan(&userID, pq.Array(&domains)); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			profiles[i].ExperienceDomains = append(profiles[i].ExperienceDomains, domains...)
		}
	}
	if err := expRows.Err(); err != nil {
		return nil, err
	}

	workQuery := `
		SELECT w.user_id, t.name, COALESCE(t.level, '')
		FROM completed_works w
		JOIN work_technologies t ON t.work_id = w.id`
	workRows, err := r.db.Query(ctx, workQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work technologies: %w", err)
	}
	defer workRows.Close()

	for workRows.Next() {
		var userID uuid.UUID
		var ev domain.SkillEvidence
		if err := workRows.Scan(&userID, &ev.Name, &ev.Level); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			profiles[i].WorkTechnologies = append(profiles[i].WorkTechnologies, ev)
		}
	}
	if err := workRows.Err(); err != nil {
		return nil, err
	}

	serviceQuery := `SELECT user_id, tech, COALESCE(level, '') FROM declared_services`
	serviceRows, err := r.db.Query(ctx, serviceQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch declared services: %w", err)
	}
	defer serviceRows.Close()

	for serviceRows.Next() {
		var userID uuid.UUID
		var ev domain.SkillEvidence
		if err := serviceRows.Scan(&userID, &ev.Name, &ev.Level); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			profiles[i].DeclaredServices = append(profiles[i].DeclaredServices, ev)
		}
	}
	if err := serviceRows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}
