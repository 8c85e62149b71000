package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"smartfraud/features"
)

const (
	TypeDecisionTree       = "decision_tree"
	TypeLogisticRegression = "logistic_regression"
)

// Artifact is the on-disk form of a trained model.
type Artifact struct {
	Name     string              `json:"name"`
	Version  string              `json:"version"`
	Type     string              `json:"type"`
	Features []string            `json:"features"`
	Encoders map[string]Encoder  `json:"encoders,omitempty"`
	Tree     []TreeNode          `json:"tree,omitempty"`
	Linear   *LogisticRegression `json:"linear,omitempty"`
}

// LoadModel reads and validates the artifact at path.
func LoadModel(path string) (*Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, path, err)
	}
	model, err := artifact.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}

// Build turns a decoded artifact into a usable model.
func (a Artifact) Build() (*Model, error) {
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("%w: no features listed", ErrInvalidModel)
	}
	for _, col := range a.Features {
		v, ok := features.Record{}.Get(col)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature %q", ErrInvalidModel, col)
		}
		if _, hasEncoder := a.Encoders[col]; v.Categorical && !hasEncoder {
			return nil, fmt.Errorf("%w: categorical feature %q has no encoder", ErrInvalidModel, col)
		}
	}

	var (
		est estimator
		err error
	)
	switch a.Type {
	case TypeDecisionTree:
		est, err = NewDecisionTree(a.Tree, len(a.Features))
	case TypeLogisticRegression:
		if a.Linear == nil {
			return nil, fmt.Errorf("%w: missing linear parameters", ErrInvalidModel)
		}
		lr := *a.Linear
		err = lr.validate(len(a.Features))
		est = &lr
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, a.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	return &Model{
		Name:     a.Name,
		Version:  a.Version,
		Type:     a.Type,
		columns:  append([]string(nil), a.Features...),
		encoders: a.Encoders,
		est:      est,
	}, nil
}
