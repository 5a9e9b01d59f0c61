// Package talentserver exposes the talent use cases as MCP tools.
package talentserver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spigell/talentbridge/internal/esco"
	"github.com/spigell/talentbridge/internal/profile"
	"github.com/spigell/talentbridge/internal/store"
	"github.com/spigell/talentbridge/internal/talent"
	"go.uber.org/zap"
)

const serverName = "talentbridge"

// Service is the part of talent.Service the tools call.
type Service interface {
	CreateSeeker(ctx context.Context, req profile.Request) (*store.Seeker, error)
	Seekers(ctx context.Context) ([]*store.Seeker, error)
	SearchOccupations(ctx context.Context, text string) ([]esco.Concept, error)
	CreatePosting(ctx context.Context, req talent.PostingRequest) (*store.Posting, error)
	Postings(ctx context.Context) ([]*store.Posting, error)
	Match(ctx context.Context, seekerID, postingID uuid.UUID, opts talent.MatchOptions) (*talent.MatchReport, error)
}

type tools struct {
	svc    Service
	logger *zap.Logger
}

// New builds a server with every tool registered.
func New(svc Service, version string, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version,
	}, nil)

	RegisterTools(server, svc, logger)

	return server
}

// RegisterTools registers parse_cv, list_seekers, search_occupations,
// create_job_posting, list_job_postings and match_seeker_to_job.
func RegisterTools(server *mcp.Server, svc Service, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &tools{svc: svc, logger: logger.Named("mcp")}

	t.registerSeekers(server)
	t.registerPostings(server)
	t.registerMatch(server)
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid id: %q", field, raw)
	}
	return id, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
