package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/talentbridge/internal/esco"
	"github.com/spigell/talentbridge/internal/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseSkillFlag(t *testing.T) {
	cases := []struct {
		raw   string
		name  string
		level int
		err   bool
	}{
		{raw: "python", name: "python"},
		{raw: "python:4", name: "python", level: 4},
		{raw: " SQL : 2 ", name: "SQL", level: 2},
		{raw: "c++: advanced", name: "c++: advanced"},
		{raw: "go:9", err: true},
		{raw: ":3", name: ":3"},
		{raw: "   ", err: true},
	}

	for _, tc := range cases {
		skill, err := parseSkillFlag(tc.raw)
		if tc.err {
			if err == nil {
				t.Fatalf("expected an error for %q", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseSkillFlag(%q): %v", tc.raw, err)
		}
		if skill.Name != tc.name || skill.Proficiency != tc.level {
			t.Fatalf("parseSkillFlag(%q) = %q:%d, expected %q:%d", tc.raw, skill.Name, skill.Proficiency, tc.name, tc.level)
		}
	}
}

func TestScoreFrom(t *testing.T) {
	input := []byte(`{
		"seekerSkills": [
			{"uri": "s/python", "title": "Python", "proficiency": 5, "source": "explicit"},
			{"uri": "s/stats", "title": "statistics", "proficiency": 3, "source": "inferred"}
		],
		"jobSkills": [
			{"uri": "s/python", "title": "Python", "isEssential": true},
			{"uri": "s/ml", "title": "machine learning", "isEssential": true},
			{"uri": "s/git", "isEssential": false}
		],
		"coOccurrence": {"s/stats": {"s/ml": 0.2}},
		"titles": {"s/git": "use version control"}
	}`)

	result, err := scoreFrom(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"Python"}, result.MatchedTitles)
	assert.Empty(t, result.MissingEssential)
	require.Len(t, result.FuzzyMatches, 1)
	assert.Equal(t, "s/ml", result.FuzzyMatches[0].JobURI)
	assert.Equal(t, []string{"use version control"}, result.OptionalMissingTitles)
	assert.Greater(t, result.MatchScore, 0)
	assert.Equal(t, 100, result.SeekerRelevance)
}

func TestScoreFromDefaultsMissingProficiency(t *testing.T) {
	input := []byte(`{
		"seekerSkills": [{"uri": "s/python", "title": "Python", "source": "explicit"}],
		"jobSkills": [{"uri": "s/python", "title": "Python", "isEssential": true}]
	}`)

	result, err := scoreFrom(input)
	if err != nil {
		t.Fatalf("scoreFrom: %v", err)
	}
	if result.MatchScore != 80 {
		t.Fatalf("expected score 80 for an unset proficiency, got %d", result.MatchScore)
	}
}

func TestScoreFromRejectsBadJSON(t *testing.T) {
	if _, err := scoreFrom([]byte(`{"seekerSkills": 1}`)); err == nil {
		t.Fatal("expected a decoding error")
	}
}

func TestScoreFromEmptyInput(t *testing.T) {
	result, err := scoreFrom([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, result.MatchScore)
	assert.Equal(t, matching.ScoreBreakdown{}, result.Breakdown)
}

func TestDecodeConfig(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
database-url: postgres://localhost/talent
esco:
  rate-limit: 2.5
  cache-ttl: 24h
  cache-file: ""
ai:
  enabled: false
training:
  brave:
    api-key-file: /run/secrets/brave
`)))

	config, err := decodeConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/talent", config.DatabaseURL)
	assert.Equal(t, 2.5, config.ESCO.RateLimit)
	assert.Equal(t, 24*time.Hour, config.ESCO.CacheTTL)
	assert.Empty(t, config.ESCO.CacheFile)
	assert.Equal(t, "en", config.ESCO.Language)
	assert.Equal(t, 3, config.ESCO.MaxRetries)
	assert.False(t, config.AI.Enabled)
	assert.Equal(t, "gemini-2.5-flash", config.AI.Gemini.Model)
	assert.Equal(t, "/run/secrets/brave", config.Training.Brave.APIKeyFile)
	assert.Equal(t, 5, config.Training.MaxSkills)
}

func TestDecodeConfigWithoutFile(t *testing.T) {
	config, err := decodeConfig(viper.New())
	require.NoError(t, err)

	require.NotNil(t, config.ESCO)
	require.NotNil(t, config.AI.Gemini)
	require.NotNil(t, config.Training.Brave)
}

func TestNewAssistantDisabled(t *testing.T) {
	assistant, err := newAssistant(context.Background(), &AIConfig{Gemini: &GeminiConfig{}}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, assistant)
}

func TestNewAssistantRejectsUnknownProvider(t *testing.T) {
	_, err := newAssistant(context.Background(), &AIConfig{Enabled: true, Provider: "openai", Gemini: &GeminiConfig{}}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported ai provider")
}

func TestNewTrainerWithoutKey(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "")

	finder, err := newTrainer(&TrainingConfig{Brave: &BraveConfig{}}, nil, zap.NewNop())
	require.NoError(t, err)

	programs, err := finder.Find(context.Background(), "data analyst", []string{"sql"})
	require.NoError(t, err)
	assert.Empty(t, programs)
}

func TestMatchFilter(t *testing.T) {
	seeker := uuid.New()

	cmd := &cobra.Command{}
	cmd.Flags().String("seeker", "", "")
	cmd.Flags().String("posting", "", "")
	require.NoError(t, cmd.Flags().Set("seeker", seeker.String()))

	filter, err := matchFilter(cmd)
	require.NoError(t, err)
	require.NotNil(t, filter.SeekerID)
	assert.Equal(t, seeker, *filter.SeekerID)
	assert.Nil(t, filter.PostingID)

	require.NoError(t, cmd.Flags().Set("posting", "not-a-uuid"))
	_, err = matchFilter(cmd)
	assert.Error(t, err)
}

type fakeOccupations struct {
	concepts []esco.Concept
	err      error
	calls    int
}

func (f *fakeOccupations) SearchOccupations(_ context.Context, _ string) ([]esco.Concept, error) {
	f.calls++
	return f.concepts, f.err
}

func occupationCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{}
	addOccupationFlags(cmd)
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

func TestResolveOccupationByURI(t *testing.T) {
	searcher := &fakeOccupations{}
	cmd := occupationCommand(t, map[string]string{"occupation": " http://data.europa.eu/esco/occupation/1 "})

	uri, err := resolveOccupation(context.Background(), cmd, searcher, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "http://data.europa.eu/esco/occupation/1", uri)
	assert.Zero(t, searcher.calls)
}

func TestResolveOccupationTakesFirstHit(t *testing.T) {
	searcher := &fakeOccupations{concepts: []esco.Concept{
		{URI: "o/1", Title: "data analyst"},
		{URI: "o/2", Title: "data scientist"},
	}}
	cmd := occupationCommand(t, map[string]string{"search": "data", "first": "true"})

	uri, err := resolveOccupation(context.Background(), cmd, searcher, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "o/1", uri)
}

func TestResolveOccupationWithoutHits(t *testing.T) {
	cmd := occupationCommand(t, map[string]string{"search": "astronaut chef"})

	_, err := resolveOccupation(context.Background(), cmd, &fakeOccupations{}, zap.NewNop())
	if !errors.Is(err, errNoOccupation) {
		t.Fatalf("expected errNoOccupation, got %v", err)
	}
}

func TestOccupationLabels(t *testing.T) {
	labels := occupationLabels([]esco.Concept{{URI: "o/1", Title: "nurse"}})
	if len(labels) != 1 || labels[0] != "nurse / o/1" {
		t.Fatalf("unexpected labels: %v", labels)
	}
}
