package esco

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	SearchPath = "/search"

	typeSkill      = "skill"
	typeOccupation = "occupation"
)

// Concept is a search hit: a skill or an occupation.
type Concept struct {
	URI   string `mapstructure:"uri" json:"uri"`
	Title string `mapstructure:"title" json:"title"`
}

func (c *Client) SearchSkills(ctx context.Context, text string) ([]Concept, error) {
	return c.search(ctx, text, typeSkill)
}

func (c *Client) SearchOccupations(ctx context.Context, text string) ([]Concept, error) {
	return c.search(ctx, text, typeOccupation)
}

func (c *Client) search(ctx context.Context, text, kind string) ([]Concept, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Concept{}, nil
	}

	q := url.Values{}
	q.Set("text", text)
	q.Set("language", c.Language)
	q.Set("type", kind)
	q.Set("limit", searchLimit)

	doc, err := c.getJSON(ctx, SearchPath, q)
	if err != nil {
		return nil, fmt.Errorf("searching %s %q: %w", kind, text, err)
	}

	concepts := make([]Concept, 0)
	results := dig(doc, "_embedded", "results")
	if results == nil {
		return concepts, nil
	}

	if err := mapstructure.Decode(results, &concepts); err != nil {
		return nil, fmt.Errorf("decoding %s search results: %w", kind, err)
	}

	return concepts, nil
}
