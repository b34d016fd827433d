package glrlm

import "voxtract/internal/discretize"

// directions returns the unique scan directions: 13 in 3D, 4 for single-slice
// grids. Opposite vectors describe the same runs and are not repeated.
func directions(nz int) [][3]int {
	planar := [][3]int{
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 0},
		{1, -1, 0},
	}
	if nz == 1 {
		return planar
	}
	return append(planar, [][3]int{
		{0, 0, 1},
		{1, 0, 1},
		{1, 0, -1},
		{0, 1, 1},
		{0, 1, -1},
		{1, 1, 1},
		{1, -1, 1},
		{1, 1, -1},
		{1, -1, -1},
	}...)
}

// runMatrix counts gray-level runs for one direction. counts[i][j] is the
// number of runs of gray level i with length j, both 1-based.
type runMatrix struct {
	counts [][]float64
	ng     int
	maxRun int
}

// buildMatrix scans the grid along dir. A run starts at any in-mask voxel
// whose predecessor along dir is outside the grid, outside the mask, or a
// different gray level; it extends while level and membership hold.
func buildMatrix(grid *discretize.Grid, dir [3]int) *runMatrix {
	maxRun := max(grid.NX, max(grid.NY, grid.NZ))
	m := &runMatrix{
		counts: make([][]float64, grid.Ng+1),
		ng:     grid.Ng,
		maxRun: maxRun,
	}
	for i := range m.counts {
		m.counts[i] = make([]float64, maxRun+1)
	}

	dx, dy, dz := dir[0], dir[1], dir[2]
	for z := 0; z < grid.NZ; z++ {
		for y := 0; y < grid.NY; y++ {
			for x := 0; x < grid.NX; x++ {
				level := grid.Level(x, y, z)
				if level == 0 {
					continue
				}

				// Only run starts are counted; interior voxels are
				// picked up by the walk below.
				px, py, pz := x-dx, y-dy, z-dz
				if inGrid(grid, px, py, pz) && grid.Level(px, py, pz) == level {
					continue
				}

				length := 1
				nx, ny, nz := x+dx, y+dy, z+dz
				for inGrid(grid, nx, ny, nz) && grid.Level(nx, ny, nz) == level {
					length++
					nx += dx
					ny += dy
					nz += dz
				}
				m.counts[level][length]++
			}
		}
	}

	return m
}

func inGrid(grid *discretize.Grid, x, y, z int) bool {
	return x >= 0 && x < grid.NX && y >= 0 && y < grid.NY && z >= 0 && z < grid.NZ
}

// totals precomputes the marginal sums the feature formulas share.
type totals struct {
	runs      float64   // Nr
	byLevel   []float64 // Σ_j counts[i][j]
	byLength  []float64 // Σ_i counts[i][j]
	voxelsVia float64   // Σ j·counts[i][j], equals the ROI voxel count
}

func (m *runMatrix) totals() totals {
	t := totals{
		byLevel:  make([]float64, m.ng+1),
		byLength: make([]float64, m.maxRun+1),
	}
	for i := 1; i <= m.ng; i++ {
		for j := 1; j <= m.maxRun; j++ {
			c := m.counts[i][j]
			if c == 0 {
				continue
			}
			t.runs += c
			t.byLevel[i] += c
			t.byLength[j] += c
			t.voxelsVia += c * float64(j)
		}
	}
	return t
}
