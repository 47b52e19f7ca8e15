package wheel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	tree     *Tree
	rebuilds int
	applied  map[Handle]float64
}

func (r *recorder) Rebuild(t *Tree) {
	r.tree = t
	r.rebuilds++
	r.applied = make(map[Handle]float64)
}

func (r *recorder) ApplyOpacity(h Handle, opacity float64) {
	r.applied[h] = opacity
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		rings, want, group, rate int
	}{
		{3, 3, 50, 400},
		{4, 4, 30, 480},
		{5, 5, 15, 480},
		{6, 6, 10, 640},
		{7, 7, 5, 640},
		{8, 8, 3, 768},
		{9, 9, 1, 512},
		{10, 10, 1, 1024},
		{1, 3, 50, 400},
		{42, 10, 1, 1024},
	}
	for _, tc := range tests {
		cfg := NewConfig(tc.rings)
		assert.Equal(t, tc.want, cfg.Rings)
		assert.Equal(t, tc.group, cfg.QuantsPerGroup)
		assert.Equal(t, tc.rate, cfg.QuantRate())
	}
}

func TestParseRings(t *testing.T) {
	n, ok := ParseRings(7)
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	n, ok = ParseRings(-4)
	assert.True(t, ok)
	assert.Equal(t, MinRings, n)

	n, ok = ParseRings(99)
	assert.True(t, ok)
	assert.Equal(t, MaxRings, n)

	for in, want := range map[float64]int{3.7: 4, 4.4: 4, 4.5: 5, 2.6: MinRings, 10.4: MaxRings} {
		n, ok = ParseRings(in)
		assert.True(t, ok)
		assert.Equal(t, want, n, "rings %v", in)
	}

	_, ok = ParseRings(math.NaN())
	assert.False(t, ok)
	_, ok = ParseRings(math.Inf(1))
	assert.False(t, ok)
}

func TestTreeRingSizesHalve(t *testing.T) {
	for rings := MinRings; rings <= MaxRings; rings++ {
		m := NewModel(nil)
		cfg := NewConfig(rings)
		require.True(t, m.Configure(cfg))
		tree := m.Tree()
		require.Equal(t, rings, tree.Rings())
		for k := 0; k < rings; k++ {
			assert.Len(t, tree.Handles[k], cfg.QuantRate()>>k)
			if k > 0 {
				assert.Equal(t, len(tree.Handles[k-1]), 2*len(tree.Handles[k]))
			}
		}
		assert.Equal(t, 2*cfg.QuantsPerGroup, len(tree.Handles[rings-1]))
	}
}

func TestConfigureIdempotent(t *testing.T) {
	r := &recorder{}
	m := NewModel(r)
	assert.True(t, m.Configure(NewConfig(4)))
	first := m.Tree()
	assert.False(t, m.Configure(NewConfig(4)))
	assert.Same(t, first, m.Tree())
	assert.Equal(t, 1, r.rebuilds)

	assert.True(t, m.Configure(NewConfig(5)))
	assert.Equal(t, 2, r.rebuilds)
	assert.False(t, m.Tree().Valid(first.Handles[0][0]))
	assert.True(t, m.Tree().Valid(m.Tree().Handles[0][0]))
}

func TestSetSingleChain(t *testing.T) {
	r := &recorder{}
	m := NewModel(r)
	m.Configure(NewConfig(3))
	require.Equal(t, 400, m.Tree().Config.QuantRate())
	require.NoError(t, m.SetSingle(300))

	want := map[int]int{0: 300, 1: 100, 2: 0}
	for ring, lit := range want {
		vals := m.Opacities()[ring]
		require.Len(t, vals, 400>>ring)
		for q, v := range vals {
			if q == lit {
				assert.Equal(t, 1.0, v, "ring %d quant %d", ring, q)
			} else {
				assert.Zero(t, v, "ring %d quant %d", ring, q)
			}
		}
	}
	assert.Len(t, r.applied, 400+200+100)
	assert.Equal(t, 1.0, r.applied[m.Tree().Handles[2][0]])
}

func TestSetSingleWrapsAndAccumulates(t *testing.T) {
	m := NewModel(nil)
	m.Configure(NewConfig(3))
	require.NoError(t, m.SetSingle(700, -100, 300))
	// 700 % 400 == 300, -100 wraps to 300 too.
	assert.Equal(t, 1.0, m.Opacities()[0][300])

	require.NoError(t, m.SetSingle(0, 200))
	assert.Equal(t, 0.5, m.Opacities()[0][0])
	assert.Equal(t, 0.5, m.Opacities()[0][200])
	assert.Equal(t, 1.0, m.Opacities()[1][0])
}

func randomDist(rng *rand.Rand, n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		if rng.Intn(3) > 0 {
			d[i] = rng.Float64() * 10
		}
	}
	return d
}

func sum(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

func TestRenderPreservesMass(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		m := NewModel(nil)
		m.Configure(NewConfig(MinRings + rng.Intn(MaxRings-MinRings+1)))
		q := m.Tree().Config.QuantRate()
		require.NoError(t, m.Render(randomDist(rng, q)))

		vals := m.Opacities()
		first := sum(vals[0])
		assert.InDelta(t, 1, first, 1e-9)
		for ring := range vals {
			assert.InDelta(t, first, sum(vals[ring]), 1e-9)
		}
	}
}

func TestRenderHalvingSum(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	m := NewModel(nil)
	cfg := NewConfig(4)
	m.Configure(cfg)
	require.NoError(t, m.Render(randomDist(rng, cfg.QuantRate())))

	vals := m.Opacities()
	for k := 0; k+1 < cfg.Rings; k++ {
		half := cfg.RingSize(k + 1)
		for j := 0; j < half; j++ {
			assert.InDelta(t, vals[k][j]+vals[k][j+half], vals[k+1][j], 1e-12)
		}
	}
}

func TestRenderScaleInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	cfg := NewConfig(6)
	dist := randomDist(rng, cfg.QuantRate())

	a := NewModel(nil)
	a.Configure(cfg)
	require.NoError(t, a.Render(dist))

	scaled := make([]float64, len(dist))
	for i, v := range dist {
		scaled[i] = v * 37.5
	}
	b := NewModel(nil)
	b.Configure(cfg)
	require.NoError(t, b.Render(scaled))

	for ring := range a.Opacities() {
		assert.InDeltaSlice(t, a.Opacities()[ring], b.Opacities()[ring], 1e-12)
	}
}

func TestRenderDegenerate(t *testing.T) {
	r := &recorder{}
	m := NewModel(r)
	cfg := NewConfig(3)
	m.Configure(cfg)

	err := m.Render(make([]float64, cfg.QuantRate()))
	assert.ErrorIs(t, err, ErrDegenerate)
	for _, v := range m.Opacities()[0] {
		assert.InDelta(t, 1.0/400, v, 1e-15)
	}
	for _, v := range m.Opacities()[2] {
		assert.InDelta(t, 4.0/400, v, 1e-15)
	}
	for _, v := range r.applied {
		assert.False(t, math.IsNaN(v))
	}
}

func TestRenderErrors(t *testing.T) {
	m := NewModel(nil)
	assert.ErrorIs(t, m.Render(nil), ErrNoTree)
	assert.ErrorIs(t, m.SetSingle(1), ErrNoTree)

	m.Configure(NewConfig(3))
	assert.ErrorIs(t, m.Render(make([]float64, 10)), ErrLength)
}

func TestHalveSum(t *testing.T) {
	assert.Equal(t, []float64{6, 8, 10, 12}, HalveSum([]float64{1, 2, 3, 4, 5, 6, 7, 8}))
}
