package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/matching"
	"go.uber.org/zap"
)

const seekerColumns = `s.id, s.user_id, u.name, u.email, s.cv_text, s.job_titles, s.education, s.created_at`

// CreateSeeker inserts the user, the seeker profile and its skills in one
// transaction.
func (s *Store) CreateSeeker(ctx context.Context, in NewSeeker) (*Seeker, error) {
	seeker := &Seeker{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		CVText:    in.CVText,
		JobTitles: nonNil(in.JobTitles),
		Education: nonNil(in.Education),
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)`,
			seeker.UserID, seeker.Name, seeker.Email, RoleSeeker,
		); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO seeker_profiles (id, user_id, cv_text, job_titles, education)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING created_at`,
			seeker.ID, seeker.UserID, seeker.CVText, seeker.JobTitles, seeker.Education,
		).Scan(&seeker.CreatedAt); err != nil {
			return fmt.Errorf("insert seeker profile: %w", err)
		}

		skills, err := insertSeekerSkills(ctx, tx, seeker.ID, in.Skills)
		if err != nil {
			return err
		}
		seeker.Skills = skills
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create seeker: %w", err)
	}

	s.logger.Debug("seeker created",
		zap.String(logger.FieldSeeker, seeker.ID.String()),
		zap.Int("skills", len(seeker.Skills)),
	)
	return seeker, nil
}

func insertSeekerSkills(ctx context.Context, tx pgx.Tx, seekerID uuid.UUID, skills []matching.SeekerSkill) ([]matching.SeekerSkill, error) {
	stored := make([]matching.SeekerSkill, 0, len(skills))
	if len(skills) == 0 {
		return stored, nil
	}

	batch := &pgx.Batch{}
	for i, skill := range skills {
		skill.Proficiency = matching.ClampProficiency(skill.Proficiency)
		batch.Queue(
			`INSERT INTO seeker_skills (seeker_id, position, esco_uri, title, proficiency, source)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (seeker_id, esco_uri) DO NOTHING`,
			seekerID, i, skill.URI, skill.Title, skill.Proficiency, skill.Source.String(),
		)
		stored = append(stored, skill)
	}

	results := tx.SendBatch(ctx, batch)
	for range skills {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("insert seeker skill: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("insert seeker skills: %w", err)
	}

	return dedupeSeekerSkills(stored), nil
}

// dedupeSeekerSkills mirrors the ON CONFLICT DO NOTHING of the insert: the
// first skill per URI is kept.
func dedupeSeekerSkills(skills []matching.SeekerSkill) []matching.SeekerSkill {
	seen := make(map[string]struct{}, len(skills))
	out := skills[:0]
	for _, skill := range skills {
		if _, ok := seen[skill.URI]; ok {
			continue
		}
		seen[skill.URI] = struct{}{}
		out = append(out, skill)
	}
	return out
}

// GetSeeker returns the seeker with its skills.
func (s *Store) GetSeeker(ctx context.Context, id uuid.UUID) (*Seeker, error) {
	seeker, err := scanSeeker(s.pool.QueryRow(ctx,
		`SELECT `+seekerColumns+`
		 FROM seeker_profiles s JOIN users u ON u.id = s.user_id
		 WHERE s.id = $1`, id,
	))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("seeker %s", id))
	}

	skills, err := loadSeekerSkills(ctx, s.pool, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	seeker.Skills = nonNilSkills(skills[id])

	return seeker, nil
}

// ListSeekers returns all seekers, newest first.
func (s *Store) ListSeekers(ctx context.Context) ([]*Seeker, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+seekerColumns+`
		 FROM seeker_profiles s JOIN users u ON u.id = s.user_id
		 ORDER BY s.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list seekers: %w", err)
	}
	defer rows.Close()

	seekers := []*Seeker{}
	ids := []uuid.UUID{}
	for rows.Next() {
		seeker, err := scanSeeker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seeker: %w", err)
		}
		seekers = append(seekers, seeker)
		ids = append(ids, seeker.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list seekers: %w", err)
	}

	skills, err := loadSeekerSkills(ctx, s.pool, ids)
	if err != nil {
		return nil, err
	}
	for _, seeker := range seekers {
		seeker.Skills = nonNilSkills(skills[seeker.ID])
	}

	return seekers, nil
}

func scanSeeker(row pgx.Row) (*Seeker, error) {
	var seeker Seeker
	if err := row.Scan(
		&seeker.ID, &seeker.UserID, &seeker.Name, &seeker.Email,
		&seeker.CVText, &seeker.JobTitles, &seeker.Education, &seeker.CreatedAt,
	); err != nil {
		return nil, err
	}
	seeker.JobTitles = nonNil(seeker.JobTitles)
	seeker.Education = nonNil(seeker.Education)
	return &seeker, nil
}

func loadSeekerSkills(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID][]matching.SeekerSkill, error) {
	out := make(map[uuid.UUID][]matching.SeekerSkill, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx,
		`SELECT seeker_id, esco_uri, title, proficiency, source
		 FROM seeker_skills
		 WHERE seeker_id = ANY($1::uuid[])
		 ORDER BY seeker_id, position`,
		uuidStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("load seeker skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seekerID uuid.UUID
			skill    matching.SeekerSkill
			source   string
		)
		if err := rows.Scan(&seekerID, &skill.URI, &skill.Title, &skill.Proficiency, &source); err != nil {
			return nil, fmt.Errorf("scan seeker skill: %w", err)
		}
		skill.Source = matching.ParseSource(source)
		out[seekerID] = append(out[seekerID], skill)
	}

	return out, rows.Err()
}
