package wheel

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrLength     = errors.New("wheel: distribution length does not match quant rate")
	ErrDegenerate = errors.New("wheel: distribution has no mass, showing uniform")
	ErrNoTree     = errors.New("wheel: not configured")
)

// Renderer paints quants. Rebuild is called with the fresh tree after every
// reconfiguration, before any opacity that uses its handles.
type Renderer interface {
	Rebuild(t *Tree)
	ApplyOpacity(h Handle, opacity float64)
}

// Model owns the quant tree and publishes opacities to a Renderer.
type Model struct {
	renderer Renderer
	tree     *Tree
	gen      uint64
	values   [][]float64
}

// NewModel creates an unconfigured model. r may be nil.
func NewModel(r Renderer) *Model {
	return &Model{renderer: r}
}

// Configure rebuilds the tree for cfg. It is a no-op returning false when the
// ring count is unchanged.
func (m *Model) Configure(cfg Config) bool {
	if m.tree != nil && m.tree.Config.Rings == cfg.Rings {
		return false
	}
	m.gen++
	m.tree = newTree(cfg, m.gen)
	m.values = make([][]float64, cfg.Rings)
	for k := range m.values {
		m.values[k] = make([]float64, cfg.RingSize(k))
	}
	if m.renderer != nil {
		m.renderer.Rebuild(m.tree)
	}
	return true
}

// Tree returns the current tree, nil before the first Configure.
func (m *Model) Tree() *Tree {
	return m.tree
}

// Opacities returns the last published values per ring. The slices are
// owned by the model.
func (m *Model) Opacities() [][]float64 {
	return m.values
}

// HalveSum folds the second half of dist onto the first half.
func HalveSum(dist []float64) []float64 {
	half := len(dist) / 2
	out := make([]float64, half)
	floats.Add(out, dist[:half])
	floats.Add(out, dist[half:2*half])
	return out
}

// Render normalises dist to unit mass and publishes every ring. A zero-mass
// distribution is replaced by a uniform one; the opacities are still
// published and ErrDegenerate is returned.
func (m *Model) Render(dist []float64) error {
	if m.tree == nil {
		return ErrNoTree
	}
	q := m.tree.Config.QuantRate()
	if len(dist) != q {
		return fmt.Errorf("%w: got %d, want %d", ErrLength, len(dist), q)
	}

	var err error
	vals := make([]float64, q)
	sum := floats.Sum(dist)
	if sum > 0 {
		floats.ScaleTo(vals, 1/sum, dist)
	} else {
		for i := range vals {
			vals[i] = 1 / float64(q)
		}
		err = ErrDegenerate
	}

	for ring, hs := range m.tree.Handles {
		copy(m.values[ring], vals)
		if m.renderer != nil {
			for quant, h := range hs {
				m.renderer.ApplyOpacity(h, vals[quant])
			}
		}
		if ring < len(m.tree.Handles)-1 {
			vals = HalveSum(vals)
		}
	}
	return err
}

// SetSingle lights the given quants (taken modulo the quant rate) with equal
// weight. Repeated indices add up.
func (m *Model) SetSingle(quants ...int) error {
	if m.tree == nil {
		return ErrNoTree
	}
	q := m.tree.Config.QuantRate()
	dist := make([]float64, q)
	for _, i := range quants {
		dist[((i%q)+q)%q]++
	}
	return m.Render(dist)
}
