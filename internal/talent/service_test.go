package talent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/talentbridge/internal/ai"
	"github.com/spigell/talentbridge/internal/esco"
	"github.com/spigell/talentbridge/internal/matching"
	"github.com/spigell/talentbridge/internal/profile"
	"github.com/spigell/talentbridge/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	occAnalyst = "http://data.europa.eu/esco/occupation/analyst"
	skillSQL   = "http://data.europa.eu/esco/skill/sql"
	skillStats = "http://data.europa.eu/esco/skill/stats"
	skillExcel = "http://data.europa.eu/esco/skill/excel"
	skillViz   = "http://data.europa.eu/esco/skill/viz"
)

type fakeTaxonomy struct {
	mu       sync.Mutex
	coCalls  int
	co       matching.CoOccurrence
	coErr    error
	occupied map[string]*esco.Occupation
}

func (f *fakeTaxonomy) SearchSkills(_ context.Context, text string) ([]esco.Concept, error) {
	switch text {
	case "SQL":
		return []esco.Concept{{URI: skillSQL, Title: "SQL"}}, nil
	case "Excel":
		return []esco.Concept{{URI: skillExcel, Title: "Excel"}}, nil
	}
	return nil, nil
}

func (f *fakeTaxonomy) SearchOccupations(_ context.Context, text string) ([]esco.Concept, error) {
	if text == "analyst" {
		return []esco.Concept{{URI: occAnalyst, Title: "data analyst"}}, nil
	}
	return nil, nil
}

func (f *fakeTaxonomy) GetOccupation(_ context.Context, uri string) (*esco.Occupation, error) {
	occ, ok := f.occupied[uri]
	if !ok {
		return nil, &esco.StatusError{Code: 404, Status: "404 Not Found", URL: uri}
	}
	return occ, nil
}

func (f *fakeTaxonomy) BatchCoOccurrence(_ context.Context, _, _ []string) (matching.CoOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coCalls++
	return f.co, f.coErr
}

func newTaxonomy() *fakeTaxonomy {
	return &fakeTaxonomy{
		co: matching.CoOccurrence{skillExcel: {skillViz: 0.4}},
		occupied: map[string]*esco.Occupation{
			occAnalyst: {
				URI:   occAnalyst,
				Title: "data analyst",
				EssentialSkills: []esco.Skill{
					{URI: skillSQL, Title: "SQL", SkillType: "skill"},
					{URI: skillStats, Title: "statistics", SkillType: "knowledge"},
				},
				OptionalSkills: []esco.Skill{
					{URI: skillViz, Title: "data visualisation"},
				},
			},
		},
	}
}

type memStore struct {
	mu         sync.Mutex
	seekers    map[uuid.UUID]*store.Seeker
	postings   map[uuid.UUID]*store.Posting
	recruiters map[string]*store.Recruiter
	matches    map[[2]uuid.UUID]*store.Match
	saves      int
}

func newMemStore() *memStore {
	return &memStore{
		seekers:    map[uuid.UUID]*store.Seeker{},
		postings:   map[uuid.UUID]*store.Posting{},
		recruiters: map[string]*store.Recruiter{},
		matches:    map[[2]uuid.UUID]*store.Match{},
	}
}

func (m *memStore) CreateSeeker(_ context.Context, in store.NewSeeker) (*store.Seeker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &store.Seeker{ID: uuid.New(), Name: in.Name, Email: in.Email, CVText: in.CVText, JobTitles: in.JobTitles, Education: in.Education, Skills: in.Skills}
	m.seekers[s.ID] = s
	return s, nil
}

func (m *memStore) GetSeeker(_ context.Context, id uuid.UUID) (*store.Seeker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seekers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (m *memStore) ListSeekers(context.Context) ([]*store.Seeker, error) { return nil, nil }

func (m *memStore) FindOrCreateRecruiter(_ context.Context, email, name, company string) (*store.Recruiter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.recruiters[email]; ok {
		return r, nil
	}
	r := &store.Recruiter{ID: uuid.New(), Name: name, Email: email, Company: company}
	m.recruiters[email] = r
	return r, nil
}

func (m *memStore) CreatePosting(_ context.Context, r *store.Recruiter, in store.NewPosting) (*store.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &store.Posting{ID: uuid.New(), RecruiterID: r.ID, Company: r.Company, Title: in.Title, OccupationURI: in.OccupationURI, Skills: in.Skills}
	m.postings[p.ID] = p
	return p, nil
}

func (m *memStore) SetPostingDescription(_ context.Context, id uuid.UUID, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.postings[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Description = description
	return nil
}

func (m *memStore) GetPosting(_ context.Context, id uuid.UUID) (*store.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.postings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *memStore) ListPostings(context.Context) ([]*store.Posting, error) { return nil, nil }

func (m *memStore) GetMatch(_ context.Context, seekerID, postingID uuid.UUID) (*store.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[[2]uuid.UUID{seekerID, postingID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return match, nil
}

func (m *memStore) SaveMatch(_ context.Context, in *store.Match) (*store.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	key := [2]uuid.UUID{in.SeekerID, in.PostingID}
	saved := *in
	if existing, ok := m.matches[key]; ok {
		saved.ID = existing.ID
	} else {
		saved.ID = uuid.New()
	}
	m.matches[key] = &saved
	return &saved, nil
}

func (m *memStore) ListMatches(context.Context, store.MatchFilter) ([]*store.Match, error) {
	return nil, nil
}

type fakeAssistant struct {
	mu       sync.Mutex
	calls    map[string]int
	failTask string
	parsed   *ai.ParsedCV
}

func (f *fakeAssistant) record(task string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[task]++
	if task == f.failTask {
		return errors.New("model overloaded")
	}
	return nil
}

func (f *fakeAssistant) count(task string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[task]
}

func (f *fakeAssistant) ParseCV(context.Context, string) (*ai.ParsedCV, error) {
	if err := f.record("parse_cv"); err != nil {
		return nil, err
	}
	return f.parsed, nil
}

func (f *fakeAssistant) ExplainGaps(context.Context, []string, []string, string) (string, error) {
	return "coaching", f.record("explain_gaps")
}

func (f *fakeAssistant) SummarizeCandidate(context.Context, ai.CandidateBrief) (string, error) {
	return "summary", f.record("summarize_candidate")
}

func (f *fakeAssistant) ExplainTransitionGaps(context.Context, ai.TransitionBrief) (string, error) {
	return "transition plan", f.record("explain_transition_gaps")
}

func (f *fakeAssistant) GenerateJobDescription(context.Context, string, []string, []string) (string, error) {
	return "Analyse data.", f.record("generate_job_description")
}

func (f *fakeAssistant) ExtractTrainingPrograms(context.Context, string, []string, []ai.SearchResult) ([]ai.TrainingProgram, error) {
	return nil, f.record("extract_training_programs")
}

type fixture struct {
	svc       *Service
	taxonomy  *fakeTaxonomy
	store     *memStore
	assistant *fakeAssistant
	logs      *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		taxonomy: newTaxonomy(),
		store:    newMemStore(),
		assistant: &fakeAssistant{parsed: &ai.ParsedCV{
			JobTitles: []string{"bookkeeper"},
			RawSkills: []ai.ParsedSkill{{Name: "SQL", Proficiency: 4}, {Name: "Excel"}},
		}},
		logs: logs,
	}
	f.svc = New(f.taxonomy, f.store, f.assistant, nil, zap.New(core))
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func TestCreateSeekerFromCV(t *testing.T) {
	f := newFixture(t)

	seeker, err := f.svc.CreateSeeker(context.Background(), profile.Request{CVText: "Ten years of SQL"})
	require.NoError(t, err)

	assert.Equal(t, "Anonymous Seeker", seeker.Name)
	assert.Equal(t, "seeker-1700000000000@talentbridge.local", seeker.Email)
	assert.Equal(t, []string{"bookkeeper"}, seeker.JobTitles)
	assert.Equal(t, []matching.SeekerSkill{
		{URI: skillSQL, Title: "SQL", Proficiency: 4, Source: matching.SourceExplicit},
		{URI: skillExcel, Title: "Excel", Proficiency: 3, Source: matching.SourceExplicit},
	}, seeker.Skills)
}

func TestCreateSeekerManualWithoutAssistant(t *testing.T) {
	f := newFixture(t)
	svc := New(f.taxonomy, f.store, nil, nil, zap.NewNop())

	seeker, err := svc.CreateSeeker(context.Background(), profile.Request{
		Name:   "Ada",
		Titles: []string{"analyst"},
		Skills: []ai.ParsedSkill{{Name: "SQL", Proficiency: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", seeker.Name)
	require.Len(t, seeker.Skills, 3)
	assert.Equal(t, matching.SeekerSkill{URI: skillSQL, Title: "SQL", Proficiency: 5, Source: matching.SourceExplicit}, seeker.Skills[0])
	assert.Equal(t, matching.SourceInferred, seeker.Skills[1].Source)

	_, err = svc.CreateSeeker(context.Background(), profile.Request{CVText: "cv"})
	require.ErrorIs(t, err, ErrNoAssistant)
}

func TestCreatePosting(t *testing.T) {
	f := newFixture(t)

	posting, err := f.svc.CreatePosting(context.Background(), PostingRequest{OccupationURI: occAnalyst})
	require.NoError(t, err)

	assert.Equal(t, "data analyst", posting.Title)
	assert.Equal(t, "Analyse data.", posting.Description)
	require.Len(t, posting.Skills, 3)
	assert.True(t, posting.Skills[0].Essential)
	assert.Equal(t, "knowledge", posting.Skills[1].SkillType)
	assert.False(t, posting.Skills[2].Essential)

	r := f.store.recruiters["recruiter-1700000000000@talentbridge.local"]
	require.NotNil(t, r)
	assert.Equal(t, "Anonymous Recruiter", r.Name)
}

func TestCreatePostingValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePosting(context.Background(), PostingRequest{OccupationURI: "not a uri"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OccupationURI failed url")
}

func TestCreatePostingKeepsPostingWhenDescriptionFails(t *testing.T) {
	f := newFixture(t)
	f.assistant.failTask = "generate_job_description"

	posting, err := f.svc.CreatePosting(context.Background(), PostingRequest{OccupationURI: occAnalyst, Company: "Acme"})
	require.NoError(t, err)
	assert.Empty(t, posting.Description)
	assert.Equal(t, 1, f.logs.FilterMessage("ai task failed, continuing without it").Len())
}

func seedPair(t *testing.T, f *fixture) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	seeker, err := f.store.CreateSeeker(ctx, store.NewSeeker{
		Name:      "Ada",
		JobTitles: []string{"bookkeeper"},
		Skills: []matching.SeekerSkill{
			{URI: skillSQL, Title: "SQL", Proficiency: 3, Source: matching.SourceExplicit},
			{URI: skillExcel, Title: "Excel", Proficiency: 3, Source: matching.SourceExplicit},
		},
	})
	require.NoError(t, err)

	posting, err := f.svc.CreatePosting(ctx, PostingRequest{OccupationURI: occAnalyst})
	require.NoError(t, err)

	return seeker.ID, posting.ID
}

func TestMatchComputesAndStores(t *testing.T) {
	f := newFixture(t)
	seekerID, postingID := seedPair(t, f)

	report, err := f.svc.Match(context.Background(), seekerID, postingID, MatchOptions{})
	require.NoError(t, err)

	assert.False(t, report.Reused)
	assert.Equal(t, "Ada", report.SeekerName)
	assert.Equal(t, "data analyst", report.JobTitle)
	assert.Equal(t, "coaching", report.Coaching)
	assert.Equal(t, "summary", report.Summary)

	result := report.Result
	assert.Equal(t, []string{"SQL"}, result.MatchedTitles)
	assert.Equal(t, []string{"statistics"}, result.MissingTitles)
	require.Len(t, result.FuzzyMatches, 1)
	assert.Equal(t, matching.MatchCoOccurrence, result.FuzzyMatches[0].Type)
	assert.Equal(t, "data visualisation", result.FuzzyMatches[0].JobTitle)

	entries := f.logs.FilterMessage("match computed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(result.MatchScore), entries[0].ContextMap()["match_score"])
}

func TestMatchReusesStoredResult(t *testing.T) {
	f := newFixture(t)
	seekerID, postingID := seedPair(t, f)
	ctx := context.Background()

	first, err := f.svc.Match(ctx, seekerID, postingID, MatchOptions{})
	require.NoError(t, err)

	second, err := f.svc.Match(ctx, seekerID, postingID, MatchOptions{})
	require.NoError(t, err)

	assert.True(t, second.Reused)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.taxonomy.coCalls)
	assert.Equal(t, 1, f.store.saves)
	assert.Equal(t, 1, f.assistant.count("explain_gaps"))

	third, err := f.svc.Match(ctx, seekerID, postingID, MatchOptions{Refresh: true})
	require.NoError(t, err)
	assert.False(t, third.Reused)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, 2, f.taxonomy.coCalls)
}

func TestMatchRegeneratesMissingTexts(t *testing.T) {
	f := newFixture(t)
	f.assistant.failTask = "summarize_candidate"
	seekerID, postingID := seedPair(t, f)
	ctx := context.Background()

	first, err := f.svc.Match(ctx, seekerID, postingID, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "coaching", first.Coaching)
	assert.Empty(t, first.Summary)

	f.assistant.failTask = "explain_gaps"
	second, err := f.svc.Match(ctx, seekerID, postingID, MatchOptions{})
	require.NoError(t, err)

	assert.True(t, second.Reused)
	assert.Equal(t, "coaching", second.Coaching)
	assert.Equal(t, "summary", second.Summary)
	assert.Equal(t, 1, f.assistant.count("explain_gaps"))
	assert.Equal(t, 2, f.assistant.count("summarize_candidate"))
	assert.Equal(t, 1, f.taxonomy.coCalls)

	third, err := f.svc.Match(ctx, seekerID, postingID, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "coaching", third.Coaching)
	assert.Equal(t, 2, f.store.saves)
}

func TestMatchNotFound(t *testing.T) {
	f := newFixture(t)
	_, postingID := seedPair(t, f)

	_, err := f.svc.Match(context.Background(), uuid.New(), postingID, MatchOptions{})
	require.ErrorIs(t, err, ErrSeekerNotFound)

	seekerID, _ := seedPair(t, f)
	_, err = f.svc.Match(context.Background(), seekerID, uuid.New(), MatchOptions{})
	require.ErrorIs(t, err, ErrPostingNotFound)
}

func TestMatchFailsOnCoOccurrenceError(t *testing.T) {
	f := newFixture(t)
	f.taxonomy.coErr = context.Canceled
	seekerID, postingID := seedPair(t, f)

	_, err := f.svc.Match(context.Background(), seekerID, postingID, MatchOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.store.saves)
}

func TestTransition(t *testing.T) {
	f := newFixture(t)
	seekerID, _ := seedPair(t, f)

	report, err := f.svc.Transition(context.Background(), seekerID, occAnalyst)
	require.NoError(t, err)

	assert.Equal(t, "data analyst", report.OccupationTitle)
	assert.Equal(t, "transition plan", report.Coaching)
	assert.Equal(t, []string{"SQL"}, report.MatchedTitles)
	assert.Equal(t, 100, report.SeekerRelevance)
	assert.Zero(t, f.store.saves)

	_, err = f.svc.Transition(context.Background(), seekerID, "http://data.europa.eu/esco/occupation/unknown")
	require.Error(t, err)
}

func TestTransitionWithoutAssistant(t *testing.T) {
	f := newFixture(t)
	seekerID, _ := seedPair(t, f)
	svc := New(f.taxonomy, f.store, nil, nil, zap.NewNop())

	report, err := svc.Transition(context.Background(), seekerID, occAnalyst)
	require.NoError(t, err)
	assert.Empty(t, report.Coaching)
}

type fakeTrainer struct{ occupation string }

func (f *fakeTrainer) Find(_ context.Context, occupation string, _ []string) ([]ai.TrainingProgram, error) {
	f.occupation = occupation
	return []ai.TrainingProgram{{Name: "SQL Bootcamp"}}, nil
}

func TestTraining(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Training(context.Background(), "data analyst", []string{"SQL"})
	require.ErrorIs(t, err, ErrNoTrainer)

	trainer := &fakeTrainer{}
	svc := New(f.taxonomy, f.store, f.assistant, trainer, zap.NewNop())
	programs, err := svc.Training(context.Background(), "data analyst", []string{"SQL"})
	require.NoError(t, err)
	assert.Len(t, programs, 1)
	assert.Equal(t, "data analyst", trainer.occupation)
}
