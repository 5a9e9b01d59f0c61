package esco

import (
	"context"
	"sync"

	"github.com/spigell/talentbridge/internal/matching"
	"github.com/spigell/talentbridge/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchCoOccurrence scores how often each seeker skill and each job skill are
// required by the same occupations (Jaccard index of their occupation sets).
// Only positive scores are kept.
//
// A skill whose occupations cannot be resolved is treated as linked to no
// occupation. Only cancellation of ctx fails the whole batch.
func (c *Client) BatchCoOccurrence(ctx context.Context, seekerURIs, jobURIs []string) (matching.CoOccurrence, error) {
	seekers := utils.UniqueStrings(seekerURIs)
	jobs := utils.UniqueStrings(jobURIs)

	all := make([]string, 0, len(seekers)+len(jobs))
	all = append(all, seekers...)
	all = append(all, jobs...)
	all = utils.UniqueStrings(all)

	var mu sync.Mutex
	sets := make(map[string]map[string]struct{}, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, uri := range all {
		g.Go(func() error {
			occupations, err := c.occupationsFor(gctx, uri)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.logger.Warn("resolving skill occupations failed, assuming none",
					zap.String("skill_uri", uri),
					zap.Error(err),
				)
			}

			set := make(map[string]struct{}, len(occupations))
			for _, o := range occupations {
				set[o] = struct{}{}
			}

			mu.Lock()
			sets[uri] = set
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	co := make(matching.CoOccurrence, len(seekers))
	for _, s := range seekers {
		for _, j := range jobs {
			score := matching.Jaccard(sets[s], sets[j])
			if score <= 0 {
				continue
			}
			if co[s] == nil {
				co[s] = make(map[string]float64)
			}
			co[s][j] = score
		}
	}

	c.logger.Debug("co-occurrence computed",
		zap.Int("seeker_skills", len(seekers)),
		zap.Int("job_skills", len(jobs)),
		zap.Int("related_seeker_skills", len(co)),
	)

	return co, nil
}

func (c *Client) occupationsFor(ctx context.Context, skillURI string) ([]string, error) {
	if c.cache != nil {
		occupations, ok, err := c.cache.Get(ctx, skillURI)
		if err != nil {
			c.logger.Warn("reading occupation cache", zap.String("skill_uri", skillURI), zap.Error(err))
		} else if ok {
			return occupations, nil
		}
	}

	occupations, err := c.SkillOccupations(ctx, skillURI)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, skillURI, occupations); err != nil {
			c.logger.Warn("writing occupation cache", zap.String("skill_uri", skillURI), zap.Error(err))
		}
	}

	return occupations, nil
}
