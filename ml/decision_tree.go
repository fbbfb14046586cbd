package ml

import (
	"errors"
	"fmt"
)

// DecisionTree is a fitted tree exported as a flat node list. Node 0 is the root.
type DecisionTree struct {
	classes     []string
	numFeatures int
	nodes       []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassIdx   int     `json:"class_idx"`
	IsLeaf     bool    `json:"is_leaf"`
}

func NewDecisionTree(classes []string, numFeatures int, nodes []TreeNode) (*DecisionTree, error) {
	dt := &DecisionTree{
		classes:     append([]string(nil), classes...),
		numFeatures: numFeatures,
		nodes:       append([]TreeNode(nil), nodes...),
	}
	if err := dt.validate(); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTree) Classes() []string {
	return append([]string(nil), dt.classes...)
}

func (dt *DecisionTree) NumFeatures() int {
	return dt.numFeatures
}

// Predict walks from the root; values <= threshold go left.
func (dt *DecisionTree) Predict(features []float64) (string, error) {
	if len(dt.nodes) == 0 {
		return "", errors.New("model not trained")
	}
	if len(features) != dt.numFeatures {
		return "", fmt.Errorf("%w: expected %d, got %d", ErrWidthMismatch, dt.numFeatures, len(features))
	}
	idx := 0
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return dt.classes[node.ClassIdx], nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return "", errors.New("invalid tree state: cycle detected")
}

func (dt *DecisionTree) validate() error {
	if len(dt.classes) == 0 {
		return fmt.Errorf("%w: decision tree has no classes", ErrInvalidArtifacts)
	}
	if dt.numFeatures <= 0 {
		return fmt.Errorf("%w: decision tree has no features", ErrInvalidArtifacts)
	}
	if len(dt.nodes) == 0 {
		return fmt.Errorf("%w: decision tree has no nodes", ErrInvalidArtifacts)
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if node.ClassIdx < 0 || node.ClassIdx >= len(dt.classes) {
				return fmt.Errorf("%w: node %d class index %d out of range", ErrInvalidArtifacts, i, node.ClassIdx)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= dt.numFeatures {
			return fmt.Errorf("%w: node %d feature index %d out of range", ErrInvalidArtifacts, i, node.FeatureIdx)
		}
		if !dt.validChild(node.LeftChild) || !dt.validChild(node.RightChild) {
			return fmt.Errorf("%w: node %d has invalid children", ErrInvalidArtifacts, i)
		}
	}
	return nil
}

func (dt *DecisionTree) validChild(idx int) bool {
	return idx > 0 && idx < len(dt.nodes)
}
