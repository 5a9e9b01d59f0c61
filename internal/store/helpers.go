package store

import (
	"github.com/google/uuid"
	"github.com/spigell/talentbridge/internal/matching"
)

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilSkills(in []matching.SeekerSkill) []matching.SeekerSkill {
	if in == nil {
		return []matching.SeekerSkill{}
	}
	return in
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
