package ml

import (
	"errors"
	"fmt"
)

// DecisionTree is a binary decision tree exported from training. Leaves
// carry per-class sample counts (or weights), from which probabilities
// are derived.
type DecisionTree struct {
	nodes    []TreeNode
	features int
}

type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	IsLeaf     bool      `json:"is_leaf"`
	Value      []float64 `json:"value,omitempty"`
}

// NewDecisionTree checks that nodes form a well-formed tree over the given
// number of features.
func NewDecisionTree(nodes []TreeNode, features int) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			if len(node.Value) != 2 {
				return nil, fmt.Errorf("leaf %d: expected 2 class values, got %d", i, len(node.Value))
			}
			if node.Value[0] < 0 || node.Value[1] < 0 || node.Value[0]+node.Value[1] <= 0 {
				return nil, fmt.Errorf("leaf %d: class values must be non-negative with a positive sum", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= features {
			return nil, fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		// children always come after their parent, which also rules out cycles
		if node.LeftChild <= i || node.LeftChild >= len(nodes) ||
			node.RightChild <= i || node.RightChild >= len(nodes) {
			return nil, fmt.Errorf("node %d: invalid children %d/%d", i, node.LeftChild, node.RightChild)
		}
	}
	return &DecisionTree{nodes: nodes, features: features}, nil
}

func (dt *DecisionTree) leaf(x []float64) (TreeNode, error) {
	if len(x) != dt.features {
		return TreeNode{}, fmt.Errorf("expected %d features, got %d", dt.features, len(x))
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if x[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

func (dt *DecisionTree) proba(x []float64) ([]float64, error) {
	node, err := dt.leaf(x)
	if err != nil {
		return nil, err
	}
	total := node.Value[0] + node.Value[1]
	return []float64{node.Value[0] / total, node.Value[1] / total}, nil
}

// predict picks the majority class of the leaf; ties go to the legit class.
func (dt *DecisionTree) predict(x []float64) (int, error) {
	node, err := dt.leaf(x)
	if err != nil {
		return 0, err
	}
	if node.Value[ClassFraud] > node.Value[ClassLegit] {
		return ClassFraud, nil
	}
	return ClassLegit, nil
}
