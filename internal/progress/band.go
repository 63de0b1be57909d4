package progress

// Band is the coarse mastery label shown on dashboards. It is always
// recomputed from the stored counters, never set directly.
type Band string

const (
	BandNovice     Band = "novice"
	BandDeveloping Band = "developing"
	BandProficient Band = "proficient"
	BandAdvanced   Band = "advanced"
	BandMastery    Band = "mastery"
)

// minBandAttempts gates promotion out of novice: accuracy over fewer
// attempts than this is too noisy to rank.
const minBandAttempts = 5

// masteryStreak is the streak required on top of accuracy for the top band.
const masteryStreak = 5

// ComputeBand derives the band from lifetime counters. Skips and timeouts
// count as attempts, so they drag accuracy down like wrong answers.
func ComputeBand(attempts, correct, streak int) Band {
	if attempts < minBandAttempts {
		return BandNovice
	}
	acc := float64(correct) / float64(attempts)
	switch {
	case acc < 0.40:
		return BandNovice
	case acc < 0.60:
		return BandDeveloping
	case acc < 0.80:
		return BandProficient
	case acc < 0.95:
		return BandAdvanced
	default:
		if streak >= masteryStreak {
			return BandMastery
		}
		return BandAdvanced
	}
}
