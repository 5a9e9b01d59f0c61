package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldSeeker     = "seeker_id"
	FieldPosting    = "posting_id"
	FieldOccupation = "occupation_uri"
	FieldProvider   = "ai_provider"
	FieldModel      = "ai_model"
	FieldScore      = "match_score"
	FieldRelevance  = "seeker_relevance"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the pairs into zap fields. Keys and values are
// trimmed and pairs with an empty side are dropped.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger. A nil logger becomes a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AIFields describes the text generation backend.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// MatchFields identifies a seeker/posting pair. Either side may be empty,
// e.g. for transitions where the target is a taxonomy occupation.
func MatchFields(seekerID, postingID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSeeker, Value: seekerID},
		StringField{Key: FieldPosting, Value: postingID},
	)
}

// ScoreFields reports the headline numbers of a match.
func ScoreFields(score, relevance int) []zap.Field {
	return []zap.Field{
		zap.Int(FieldScore, score),
		zap.Int(FieldRelevance, relevance),
	}
}
