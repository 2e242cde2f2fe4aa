package achievements

import "github.com/ideaforge/idea-engine/internal/models"

// ComputeProgress maps a level plus the fractional progress inside it
// to a single 0-100 display value. The first four tiers occupy 25%-wide
// bands; Master is always 100 with no fractional range. The asymmetry
// is deliberate and mirrors how the profile progress bar renders.
func ComputeProgress(level models.Level, fraction float64) float64 {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	switch level {
	case models.LevelStudent:
		return fraction * 25
	case models.LevelTrainee:
		return 25 + fraction*25
	case models.LevelJunior:
		return 50 + fraction*25
	case models.LevelSenior:
		return 75 + fraction*25
	case models.LevelMaster:
		return 100
	default:
		return 0
	}
}

// Standing is a user's derived rank: the current level band and the
// fraction of that band's achievements already unlocked.
type Standing struct {
	Level    models.Level `json:"level"`
	Fraction float64      `json:"fraction"`
	Percent  float64      `json:"percent"`
}

// DeriveStanding computes a user's standing from the unlocked set. The
// user sits in the first level band that is not fully unlocked; empty
// bands count as complete.
func DeriveStanding(defs []*Achievement, unlocked map[string]bool) Standing {
	perLevel := make(map[models.Level][2]int, len(models.Levels)) // unlocked, total
	for _, def := range defs {
		counts := perLevel[def.Level]
		counts[1]++
		if unlocked[def.ID] {
			counts[0]++
		}
		perLevel[def.Level] = counts
	}

	level := models.LevelMaster
	fraction := 1.0
	for _, lvl := range models.Levels {
		counts := perLevel[lvl]
		if counts[1] > 0 && counts[0] < counts[1] {
			level = lvl
			fraction = float64(counts[0]) / float64(counts[1])
			break
		}
	}

	return Standing{
		Level:    level,
		Fraction: fraction,
		Percent:  ComputeProgress(level, fraction),
	}
}
