// Package claim contains the pure selection logic of the claim protocol.
// It filters and ranks pending jobs for a claiming agent; the atomic
// acquisition itself is performed by the job store's move primitive.
package claim

import (
	"sort"

	"github.com/example/swarmd/internal/models"
)

// priority ranks, higher wins. Unknown priorities rank below low so a
// hand-edited document with a typo still sorts deterministically.
var priorityRank = map[string]int{
	models.PriorityHigh:   3,
	models.PriorityMedium: 2,
	models.PriorityLow:    1,
}

// tier positions on the fast..deep axis, used for distance matching.
var tierRank = map[string]int{
	models.TierFast:     0,
	models.TierBalanced: 1,
	models.TierDeep:     2,
}

// Eligible reports whether a pending job may be claimed: every id in
// depends_on must be present in the done set.
func Eligible(job *models.Job, done map[string]bool) bool {
	for _, dep := range job.DependsOn {
		if !done[dep] {
			return false
		}
	}
	return true
}

// Score rates a job for an agent with the given model tier. Higher is
// better. Priority dominates; within a priority band, closeness of the
// job's recommended tier to the agent's tier decides (exact match
// highest). Created-at ties are broken by Rank, not here.
func Score(job *models.Job, agentTier string) int {
	score := priorityRank[job.Priority] * 100

	distance := tierDistance(job.RecommendedTier(), agentTier)
	score -= distance * 10

	return score
}

// Rank returns the eligible jobs ordered by descending score, with
// earlier creation winning score ties. The input slice is not modified.
func Rank(pending []*models.Job, done map[string]bool, agentTier string) []*models.Job {
	candidates := make([]*models.Job, 0, len(pending))
	for _, job := range pending {
		if Eligible(job, done) {
			candidates = append(candidates, job)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := Score(candidates[i], agentTier), Score(candidates[j], agentTier)
		if si != sj {
			return si > sj
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	return candidates
}

// tierDistance is the absolute distance between two tiers on the
// fast..deep axis. Unknown tiers count as balanced.
func tierDistance(a, b string) int {
	ra, ok := tierRank[a]
	if !ok {
		ra = tierRank[models.TierBalanced]
	}
	rb, ok := tierRank[b]
	if !ok {
		rb = tierRank[models.TierBalanced]
	}
	if ra > rb {
		return ra - rb
	}
	return rb - ra
}
