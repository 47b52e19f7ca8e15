package wheel

// Handle identifies one quant of one ring. Handles from an older
// generation refer to a tree that has since been rebuilt.
type Handle struct {
	Gen   uint64
	Ring  int
	Quant int
}

// Tree is the quant hierarchy for one Config. Ring 0 is the finest.
type Tree struct {
	Config  Config
	Gen     uint64
	Handles [][]Handle
}

func newTree(cfg Config, gen uint64) *Tree {
	t := &Tree{
		Config:  cfg,
		Gen:     gen,
		Handles: make([][]Handle, cfg.Rings),
	}
	for ring := range t.Handles {
		hs := make([]Handle, cfg.RingSize(ring))
		for q := range hs {
			hs[q] = Handle{Gen: gen, Ring: ring, Quant: q}
		}
		t.Handles[ring] = hs
	}
	return t
}

// Rings returns the number of rings.
func (t *Tree) Rings() int {
	return len(t.Handles)
}

// Valid reports whether h belongs to this tree.
func (t *Tree) Valid(h Handle) bool {
	return h.Gen == t.Gen && h.Ring >= 0 && h.Ring < len(t.Handles) &&
		h.Quant >= 0 && h.Quant < len(t.Handles[h.Ring])
}
