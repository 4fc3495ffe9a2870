package services

import (
	"sort"

	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
)

// ChooseBestTeam picks one team from the candidates using a point-in-time
// load snapshot. Least open load wins; ties fall to primary over backup,
// then to the narrower window (business_hours before any before
// after_hours), then to supplied order. Teams absent from the snapshot
// count as load zero. Returns "" for an empty candidate list.
//
// Pure selection only: callers fetch the load snapshot. Two concurrent
// routes can observe the same snapshot and pick the same team; that
// transient imbalance is accepted.
func ChooseBestTeam(candidates []types.EligibleTeam, openLoadByTeam map[string]int) string {
	if len(candidates) == 0 {
		return ""
	}
	ranked := make([]types.EligibleTeam, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		li, lj := openLoadByTeam[ranked[i].TeamID], openLoadByTeam[ranked[j].TeamID]
		if li != lj {
			return li < lj
		}
		if ranked[i].Level != ranked[j].Level {
			return ranked[i].Level == competencytypes.LevelPrimary
		}
		return windowRank(ranked[i].Window) < windowRank(ranked[j].Window)
	})
	return ranked[0].TeamID
}
