package esco

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/talentbridge/internal/utils"
)

const (
	OccupationPath = "/resource/occupation"
	SkillPath      = "/resource/skill"
)

type Skill struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
	// SkillType is the last segment of the ESCO skill type URI,
	// e.g. "skill" or "knowledge".
	SkillType string `json:"skillType,omitempty"`
}

type Occupation struct {
	URI               string   `json:"uri"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	PreferredLabel    string   `json:"preferredLabel,omitempty"`
	AlternativeLabels []string `json:"alternativeLabels"`
	Code              string   `json:"code,omitempty"`
	EssentialSkills   []Skill  `json:"essentialSkills"`
	OptionalSkills    []Skill  `json:"optionalSkills"`
}

type link struct {
	URI       string `mapstructure:"uri"`
	Title     string `mapstructure:"title"`
	SkillType string `mapstructure:"skillType"`
}

type resource struct {
	URI              string                       `mapstructure:"uri"`
	Title            string                       `mapstructure:"title"`
	Code             string                       `mapstructure:"code"`
	Description      map[string]map[string]string `mapstructure:"description"`
	PreferredLabel   map[string]string            `mapstructure:"preferredLabel"`
	AlternativeLabel map[string][]string          `mapstructure:"alternativeLabel"`
	Links            struct {
		HasEssentialSkill        []link `mapstructure:"hasEssentialSkill"`
		HasOptionalSkill         []link `mapstructure:"hasOptionalSkill"`
		IsEssentialForOccupation []link `mapstructure:"isEssentialForOccupation"`
		IsOptionalForOccupation  []link `mapstructure:"isOptionalForOccupation"`
	} `mapstructure:"_links"`
}

// GetOccupation returns an occupation with its essential and optional skills.
func (c *Client) GetOccupation(ctx context.Context, uri string) (*Occupation, error) {
	res, err := c.getResource(ctx, OccupationPath, uri)
	if err != nil {
		return nil, fmt.Errorf("getting occupation %q: %w", uri, err)
	}

	lang := c.Language
	occupation := &Occupation{
		URI:               res.URI,
		Title:             res.Title,
		Description:       res.Description[lang]["literal"],
		PreferredLabel:    res.PreferredLabel[lang],
		AlternativeLabels: res.AlternativeLabel[lang],
		Code:              res.Code,
		EssentialSkills:   toSkills(res.Links.HasEssentialSkill),
		OptionalSkills:    toSkills(res.Links.HasOptionalSkill),
	}

	if occupation.AlternativeLabels == nil {
		occupation.AlternativeLabels = []string{}
	}
	if occupation.URI == "" {
		occupation.URI = uri
	}

	return occupation, nil
}

// SkillOccupations returns the URIs of occupations that need the skill,
// essential first.
func (c *Client) SkillOccupations(ctx context.Context, uri string) ([]string, error) {
	res, err := c.getResource(ctx, SkillPath, uri)
	if err != nil {
		return nil, fmt.Errorf("getting skill %q: %w", uri, err)
	}

	uris := make([]string, 0, len(res.Links.IsEssentialForOccupation)+len(res.Links.IsOptionalForOccupation))
	for _, l := range res.Links.IsEssentialForOccupation {
		uris = append(uris, l.URI)
	}
	for _, l := range res.Links.IsOptionalForOccupation {
		uris = append(uris, l.URI)
	}

	return utils.UniqueStrings(uris), nil
}

func (c *Client) getResource(ctx context.Context, path, uri string) (*resource, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("uri is required")
	}

	q := url.Values{}
	q.Set("uri", uri)
	q.Set("language", c.Language)

	doc, err := c.getJSON(ctx, path, q)
	if err != nil {
		return nil, err
	}

	var res resource
	if err := mapstructure.Decode(doc, &res); err != nil {
		return nil, fmt.Errorf("decoding resource: %w", err)
	}

	return &res, nil
}

func toSkills(links []link) []Skill {
	skills := make([]Skill, 0, len(links))
	for _, l := range links {
		skills = append(skills, Skill{
			URI:       l.URI,
			Title:     l.Title,
			SkillType: lastSegment(l.SkillType),
		})
	}
	return skills
}

func lastSegment(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
