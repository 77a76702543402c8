package model

import (
	"errors"
	"fmt"
)

// RandomForest averages the class distributions of its trees' leaves.
type RandomForest struct {
	Kind      string `json:"kind"`
	Classes   []int  `json:"classes"`
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

// Tree is a flattened binary decision tree. Node 0 is the root.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is a split when Left >= 0, otherwise a leaf whose Value holds
// per-class sample weights.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

func (n TreeNode) isLeaf() bool {
	return n.Left < 0
}

func (m *RandomForest) Predict(x []float64) (int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for i := 1; i < len(proba); i++ {
		if proba[i] > proba[best] {
			best = i
		}
	}
	return m.Classes[best], nil
}

func (m *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != m.NFeatures {
		return nil, fmt.Errorf("%w: forest expects %d, got %d", ErrDimension, m.NFeatures, len(x))
	}
	sum := make([]float64, len(m.Classes))
	for i := range m.Trees {
		leaf, err := m.Trees[i].leaf(x)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		var total float64
		for _, v := range leaf.Value {
			total += v
		}
		if total <= 0 {
			return nil, fmt.Errorf("tree %d: empty leaf", i)
		}
		for c, v := range leaf.Value {
			sum[c] += v / total
		}
	}
	n := float64(len(m.Trees))
	for c := range sum {
		sum[c] /= n
	}
	return sum, nil
}

func (t *Tree) leaf(x []float64) (TreeNode, error) {
	idx := 0
	// a well-formed tree reaches a leaf in fewer steps than it has nodes
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if idx < 0 || idx >= len(t.Nodes) {
			return TreeNode{}, errors.New("invalid tree state")
		}
		node := t.Nodes[idx]
		if node.isLeaf() {
			return node, nil
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return TreeNode{}, errors.New("tree has a cycle")
}

func (m *RandomForest) validate() error {
	if err := validateClasses(m.Classes); err != nil {
		return fmt.Errorf("random forest: %w", err)
	}
	if m.NFeatures <= 0 {
		return errors.New("random forest: n_features must be positive")
	}
	if len(m.Trees) == 0 {
		return errors.New("random forest: no trees")
	}
	for ti, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("random forest: tree %d is empty", ti)
		}
		for ni, node := range tree.Nodes {
			if node.isLeaf() {
				if len(node.Value) != len(m.Classes) {
					return fmt.Errorf("random forest: tree %d leaf %d has %d values, want %d", ti, ni, len(node.Value), len(m.Classes))
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= m.NFeatures {
				return fmt.Errorf("random forest: tree %d node %d: feature index out of range", ti, ni)
			}
			if node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("random forest: tree %d node %d: child out of range", ti, ni)
			}
		}
	}
	return nil
}
