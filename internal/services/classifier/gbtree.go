package classifier

import (
	"math"

	"StockCast/internal/domain/errs"
)

// Tree is one boosted regression tree. Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is either a split (Leaf == nil) or a leaf. A split sends x[Feature] < Threshold
// to Left, otherwise to Right; a missing (NaN) value follows DefaultLeft.
type Node struct {
	Feature     int      `json:"feature"`
	Threshold   float64  `json:"threshold"`
	Left        int      `json:"left"`
	Right       int      `json:"right"`
	DefaultLeft bool     `json:"default_left"`
	Leaf        *float64 `json:"leaf,omitempty"`
}

// GBTree is a gradient-boosted binary classifier with a logistic objective.
type GBTree struct {
	n         int
	baseScore float64
	trees     []Tree
}

func newGBTree(a Artifact) (*GBTree, error) {
	if len(a.Trees) == 0 {
		return nil, errs.Wrapf(errs.ErrModelLoad, "gbtree: no trees")
	}
	base := 0.5
	if a.BaseScore != nil {
		base = *a.BaseScore
	}
	if base <= 0 || base >= 1 {
		return nil, errs.Wrapf(errs.ErrModelLoad, "gbtree: base_score %v outside (0, 1)", base)
	}
	for t, tree := range a.Trees {
		if len(tree.Nodes) == 0 {
			return nil, errs.Wrapf(errs.ErrModelLoad, "gbtree: tree %d is empty", t)
		}
		for i, nd := range tree.Nodes {
			if nd.Leaf != nil {
				continue
			}
			if nd.Feature < 0 || nd.Feature >= a.NumFeatures {
				return nil, errs.Wrapf(errs.ErrModelLoad, "gbtree: tree %d node %d splits on feature %d", t, i, nd.Feature)
			}
			// children must come after their parent so evaluation terminates
			if nd.Left <= i || nd.Right <= i || nd.Left >= len(tree.Nodes) || nd.Right >= len(tree.Nodes) {
				return nil, errs.Wrapf(errs.ErrModelLoad, "gbtree: tree %d node %d has invalid children", t, i)
			}
		}
	}
	return &GBTree{n: a.NumFeatures, baseScore: base, trees: a.Trees}, nil
}

func (m *GBTree) NumFeatures() int { return m.n }

func (m *GBTree) Predict(x []float64) (int, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p[1] > 0.5 {
		return 1, nil
	}
	return 0, nil
}

func (m *GBTree) PredictProba(x []float64) ([]float64, error) {
	if err := checkInput(x, m.n, true); err != nil {
		return nil, err
	}
	margin := math.Log(m.baseScore / (1 - m.baseScore))
	for _, t := range m.trees {
		margin += t.eval(x)
	}
	p := sigmoid(margin)
	return []float64{1 - p, p}, nil
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		nd := t.Nodes[i]
		if nd.Leaf != nil {
			return *nd.Leaf
		}
		v := x[nd.Feature]
		switch {
		case math.IsNaN(v):
			if nd.DefaultLeft {
				i = nd.Left
			} else {
				i = nd.Right
			}
		case v < nd.Threshold:
			i = nd.Left
		default:
			i = nd.Right
		}
	}
}
