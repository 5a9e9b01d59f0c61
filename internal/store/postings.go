package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spigell/talentbridge/internal/logger"
	"go.uber.org/zap"
)

const postingColumns = `p.id, p.recruiter_id, COALESCE(r.company, ''), p.title, p.esco_occupation_uri, p.description, p.created_at`

// FindOrCreateRecruiter returns the recruiter registered under email, creating
// the user and the recruiter profile when they do not exist yet.
func (s *Store) FindOrCreateRecruiter(ctx context.Context, email, name, company string) (*Recruiter, error) {
	var recruiter *Recruiter

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var userID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&userID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			userID = uuid.New()
			if _, err := tx.Exec(ctx,
				`INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)`,
				userID, name, email, RoleRecruiter,
			); err != nil {
				return fmt.Errorf("insert user: %w", err)
			}
		case err != nil:
			return fmt.Errorf("find user: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO recruiter_profiles (id, user_id, company)
			 VALUES ($1, $2, NULLIF($3, ''))
			 ON CONFLICT (user_id) DO NOTHING`,
			uuid.New(), userID, company,
		); err != nil {
			return fmt.Errorf("insert recruiter profile: %w", err)
		}

		r, err := scanRecruiter(tx.QueryRow(ctx,
			`SELECT r.id, r.user_id, u.name, u.email, COALESCE(r.company, ''), r.created_at
			 FROM recruiter_profiles r JOIN users u ON u.id = r.user_id
			 WHERE r.user_id = $1`, userID,
		))
		if err != nil {
			return fmt.Errorf("load recruiter: %w", err)
		}
		recruiter = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find or create recruiter: %w", err)
	}

	return recruiter, nil
}

func scanRecruiter(row pgx.Row) (*Recruiter, error) {
	var r Recruiter
	if err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.Email, &r.Company, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreatePosting stores a posting with its required skills under recruiter.
func (s *Store) CreatePosting(ctx context.Context, recruiter *Recruiter, in NewPosting) (*Posting, error) {
	posting := &Posting{
		ID:            uuid.New(),
		RecruiterID:   recruiter.ID,
		Company:       recruiter.Company,
		Title:         in.Title,
		OccupationURI: in.OccupationURI,
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO job_postings (id, recruiter_id, title, esco_occupation_uri)
			 VALUES ($1, $2, $3, $4)
			 RETURNING created_at`,
			posting.ID, posting.RecruiterID, posting.Title, posting.OccupationURI,
		).Scan(&posting.CreatedAt); err != nil {
			return fmt.Errorf("insert posting: %w", err)
		}

		skills, err := insertPostingSkills(ctx, tx, posting.ID, in.Skills)
		if err != nil {
			return err
		}
		posting.Skills = skills
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create posting: %w", err)
	}

	s.logger.Debug("posting created",
		zap.String(logger.FieldPosting, posting.ID.String()),
		zap.String(logger.FieldOccupation, posting.OccupationURI),
		zap.Int("skills", len(posting.Skills)),
	)
	return posting, nil
}

func insertPostingSkills(ctx context.Context, tx pgx.Tx, postingID uuid.UUID, skills []PostingSkill) ([]PostingSkill, error) {
	stored := make([]PostingSkill, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	batch := &pgx.Batch{}

	for _, skill := range skills {
		if _, ok := seen[skill.URI]; ok {
			continue
		}
		seen[skill.URI] = struct{}{}

		batch.Queue(
			`INSERT INTO job_skills (posting_id, position, esco_uri, title, skill_type, is_essential)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			postingID, len(stored), skill.URI, skill.Title, skill.SkillType, skill.Essential,
		)
		stored = append(stored, skill)
	}

	if len(stored) == 0 {
		return stored, nil
	}

	results := tx.SendBatch(ctx, batch)
	for range stored {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("insert posting skill: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("insert posting skills: %w", err)
	}

	return stored, nil
}

func (s *Store) SetPostingDescription(ctx context.Context, id uuid.UUID, description string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE job_postings SET description = $1 WHERE id = $2`, description, id)
	if err != nil {
		return fmt.Errorf("set posting description: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("posting %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetPosting returns the posting with its skills.
func (s *Store) GetPosting(ctx context.Context, id uuid.UUID) (*Posting, error) {
	posting, err := scanPosting(s.pool.QueryRow(ctx,
		`SELECT `+postingColumns+`
		 FROM job_postings p JOIN recruiter_profiles r ON r.id = p.recruiter_id
		 WHERE p.id = $1`, id,
	))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("posting %s", id))
	}

	skills, err := loadPostingSkills(ctx, s.pool, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	posting.Skills = nonNilPostingSkills(skills[id])

	return posting, nil
}

// ListPostings returns all postings, newest first.
func (s *Store) ListPostings(ctx context.Context) ([]*Posting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postingColumns+`
		 FROM job_postings p JOIN recruiter_profiles r ON r.id = p.recruiter_id
		 ORDER BY p.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	defer rows.Close()

	postings := []*Posting{}
	ids := []uuid.UUID{}
	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		postings = append(postings, posting)
		ids = append(ids, posting.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}

	skills, err := loadPostingSkills(ctx, s.pool, ids)
	if err != nil {
		return nil, err
	}
	for _, posting := range postings {
		posting.Skills = nonNilPostingSkills(skills[posting.ID])
	}

	return postings, nil
}

func scanPosting(row pgx.Row) (*Posting, error) {
	var p Posting
	if err := row.Scan(&p.ID, &p.RecruiterID, &p.Company, &p.Title, &p.OccupationURI, &p.Description, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func loadPostingSkills(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID][]PostingSkill, error) {
	out := make(map[uuid.UUID][]PostingSkill, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx,
		`SELECT posting_id, esco_uri, title, skill_type, is_essential
		 FROM job_skills
		 WHERE posting_id = ANY($1::uuid[])
		 ORDER BY posting_id, position`,
		uuidStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("load posting skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postingID uuid.UUID
			skill     PostingSkill
		)
		if err := rows.Scan(&postingID, &skill.URI, &skill.Title, &skill.SkillType, &skill.Essential); err != nil {
			return nil, fmt.Errorf("scan posting skill: %w", err)
		}
		out[postingID] = append(out[postingID], skill)
	}

	return out, rows.Err()
}

func nonNilPostingSkills(in []PostingSkill) []PostingSkill {
	if in == nil {
		return []PostingSkill{}
	}
	return in
}
