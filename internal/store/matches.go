package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/matching"
	"go.uber.org/zap"
)

const matchColumns = `id, seeker_id, posting_id, result, coaching, summary, created_at, updated_at`

// GetMatch returns the stored match for the seeker and posting pair.
func (s *Store) GetMatch(ctx context.Context, seekerID, postingID uuid.UUID) (*Match, error) {
	m, err := scanMatch(s.pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE seeker_id = $1 AND posting_id = $2`,
		seekerID, postingID,
	))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("match %s/%s", seekerID, postingID))
	}
	return m, nil
}

// SaveMatch upserts the match for its seeker and posting pair and returns the
// stored record.
func (s *Store) SaveMatch(ctx context.Context, m *Match) (*Match, error) {
	if m == nil || m.Result == nil {
		return nil, errors.New("save match: result is required")
	}

	result, err := json.Marshal(m.Result)
	if err != nil {
		return nil, fmt.Errorf("marshal match result: %w", err)
	}

	id := m.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	stored, err := scanMatch(s.pool.QueryRow(ctx,
		`INSERT INTO matches (id, seeker_id, posting_id, score, seeker_relevance, result, coaching, summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (seeker_id, posting_id) DO UPDATE SET
		   score = EXCLUDED.score,
		   seeker_relevance = EXCLUDED.seeker_relevance,
		   result = EXCLUDED.result,
		   coaching = EXCLUDED.coaching,
		   summary = EXCLUDED.summary,
		   updated_at = NOW()
		 RETURNING `+matchColumns,
		id, m.SeekerID, m.PostingID, m.Result.MatchScore, m.Result.SeekerRelevance, result, m.Coaching, m.Summary,
	))
	if err != nil {
		return nil, fmt.Errorf("save match: %w", err)
	}

	s.logger.Debug("match saved",
		zap.String(logger.FieldSeeker, stored.SeekerID.String()),
		zap.String(logger.FieldPosting, stored.PostingID.String()),
		zap.Int(logger.FieldScore, stored.Result.MatchScore),
	)
	return stored, nil
}

// ListMatches returns matches ordered by score, best first.
func (s *Store) ListMatches(ctx context.Context, filter MatchFilter) ([]*Match, error) {
	query, args := matchesQuery(filter)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := []*Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

func matchesQuery(filter MatchFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if filter.SeekerID != nil {
		args = append(args, *filter.SeekerID)
		where = append(where, "seeker_id = $"+strconv.Itoa(len(args)))
	}
	if filter.PostingID != nil {
		args = append(args, *filter.PostingID)
		where = append(where, "posting_id = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + matchColumns + ` FROM matches`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY score DESC, updated_at DESC`

	return query, args
}

func scanMatch(row pgx.Row) (*Match, error) {
	var (
		m   Match
		raw []byte
	)
	if err := row.Scan(&m.ID, &m.SeekerID, &m.PostingID, &raw, &m.Coaching, &m.Summary, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	result, err := decodeResult(raw)
	if err != nil {
		return nil, err
	}
	m.Result = result

	return &m, nil
}

func decodeResult(raw []byte) (*matching.Result, error) {
	var result matching.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode match result: %w", err)
	}
	return &result, nil
}
