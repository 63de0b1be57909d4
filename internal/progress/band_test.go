package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBand(t *testing.T) {
	cases := []struct {
		name     string
		attempts int
		correct  int
		streak   int
		want     Band
	}{
		{"no attempts", 0, 0, 0, BandNovice},
		{"under minimum attempts even when perfect", 4, 4, 4, BandNovice},
		{"low accuracy", 10, 3, 0, BandNovice},
		{"39 percent stays novice", 100, 39, 0, BandNovice},
		{"40 percent is developing", 100, 40, 0, BandDeveloping},
		{"59 percent is developing", 100, 59, 0, BandDeveloping},
		{"60 percent is proficient", 100, 60, 0, BandProficient},
		{"79 percent is proficient", 100, 79, 0, BandProficient},
		{"80 percent is advanced", 100, 80, 0, BandAdvanced},
		{"94 percent is advanced", 100, 94, 0, BandAdvanced},
		{"95 percent without streak is advanced", 100, 95, 4, BandAdvanced},
		{"95 percent with streak is mastery", 100, 95, 5, BandMastery},
		{"perfect with long streak is mastery", 20, 20, 20, BandMastery},
		{"exactly minimum attempts counts", 5, 5, 5, BandMastery},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeBand(tc.attempts, tc.correct, tc.streak))
		})
	}
}

func TestComputeBandDeterministic(t *testing.T) {
	// The band is a pure function of the counters: same inputs, same band.
	for i := 0; i < 10; i++ {
		assert.Equal(t, ComputeBand(12, 9, 3), ComputeBand(12, 9, 3))
	}
}
