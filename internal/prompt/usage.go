package prompt

import "time"

// Usage score weights. Empirically chosen; keep the arithmetic exact
// so rankings stay compatible across versions.
const (
	favoriteBonus     = 50.0
	recencyWindowDays = 30.0
	positionBonusBase = 10
)

// UsageScore converts a usage-log snapshot into a popularity score for
// one prompt id. The score is the sum of a favorite bonus, a recency
// decay over the most recent use, and a position bonus from where that
// use sits in the recents sequence. The log is passed explicitly; the
// caller owns the snapshot and recomputes per query.
func UsageScore(promptID string, log UsageLog, now time.Time) float64 {
	var score float64

	if log.Favorites[promptID] {
		score += favoriteBonus
	}

	for i, use := range log.Recents {
		if use.PromptID != promptID {
			continue
		}
		// First match is the most recent use.
		daysSinceUse := now.Sub(use.UsedAt).Hours() / 24
		if daysSinceUse < recencyWindowDays {
			if decay := recencyWindowDays - daysSinceUse; decay > 0 {
				score += decay
			}
		}
		if bonus := positionBonusBase - i; bonus > 0 {
			score += float64(bonus)
		}
		break
	}

	return score
}
