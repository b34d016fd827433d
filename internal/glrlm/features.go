package glrlm

// Canonical feature order; result keys follow it.
const (
	ShortRunEmphasis              = "ShortRunEmphasis"
	LongRunEmphasis               = "LongRunEmphasis"
	GrayLevelNonUniformity        = "GrayLevelNonUniformity"
	RunLengthNonUniformity        = "RunLengthNonUniformity"
	RunPercentage                 = "RunPercentage"
	LowGrayLevelRunEmphasis       = "LowGrayLevelRunEmphasis"
	HighGrayLevelRunEmphasis      = "HighGrayLevelRunEmphasis"
	ShortRunLowGrayLevelEmphasis  = "ShortRunLowGrayLevelEmphasis"
	ShortRunHighGrayLevelEmphasis = "ShortRunHighGrayLevelEmphasis"
	LongRunLowGrayLevelEmphasis   = "LongRunLowGrayLevelEmphasis"
	LongRunHighGrayLevelEmphasis  = "LongRunHighGrayLevelEmphasis"
)

var featureOrder = []string{
	ShortRunEmphasis,
	LongRunEmphasis,
	GrayLevelNonUniformity,
	RunLengthNonUniformity,
	RunPercentage,
	LowGrayLevelRunEmphasis,
	HighGrayLevelRunEmphasis,
	ShortRunLowGrayLevelEmphasis,
	ShortRunHighGrayLevelEmphasis,
	LongRunLowGrayLevelEmphasis,
	LongRunHighGrayLevelEmphasis,
}

// featureVector computes every feature for one direction matrix. voxels is
// the ROI voxel count (for RunPercentage). Degenerate denominators yield 0.
func featureVector(m *runMatrix, voxels int) map[string]float64 {
	t := m.totals()
	out := make(map[string]float64, len(featureOrder))
	if t.runs == 0 {
		for _, name := range featureOrder {
			out[name] = 0
		}
		return out
	}

	var (
		sre, lre       float64
		lglre, hglre   float64
		srlgle, srhgle float64
		lrlgle, lrhgle float64
	)
	for i := 1; i <= m.ng; i++ {
		gl := float64(i) * float64(i)
		for j := 1; j <= m.maxRun; j++ {
			c := m.counts[i][j]
			if c == 0 {
				continue
			}
			rl := float64(j) * float64(j)
			sre += c / rl
			lre += c * rl
			lglre += c / gl
			hglre += c * gl
			srlgle += c / (gl * rl)
			srhgle += c * gl / rl
			lrlgle += c * rl / gl
			lrhgle += c * gl * rl
		}
	}

	var gln, rln float64
	for i := 1; i <= m.ng; i++ {
		gln += t.byLevel[i] * t.byLevel[i]
	}
	for j := 1; j <= m.maxRun; j++ {
		rln += t.byLength[j] * t.byLength[j]
	}

	out[ShortRunEmphasis] = sre / t.runs
	out[LongRunEmphasis] = lre / t.runs
	out[GrayLevelNonUniformity] = gln / t.runs
	out[RunLengthNonUniformity] = rln / t.runs
	out[LowGrayLevelRunEmphasis] = lglre / t.runs
	out[HighGrayLevelRunEmphasis] = hglre / t.runs
	out[ShortRunLowGrayLevelEmphasis] = srlgle / t.runs
	out[ShortRunHighGrayLevelEmphasis] = srhgle / t.runs
	out[LongRunLowGrayLevelEmphasis] = lrlgle / t.runs
	out[LongRunHighGrayLevelEmphasis] = lrhgle / t.runs

	if voxels > 0 {
		out[RunPercentage] = t.runs / float64(voxels)
	} else {
		out[RunPercentage] = 0
	}

	return out
}
