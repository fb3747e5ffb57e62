package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/2beens/calorietracker/internal/features"

	"github.com/spf13/cast"
)

// ErrFeatureMismatch means the feature vector layout does not fit what the
// model was trained on.
var ErrFeatureMismatch = errors.New("feature mismatch")

// XGBoost evaluates a tree ensemble saved with XGBoost's JSON model format
// (Booster.save_model / XGBRegressor.save_model with a .json file name).
// Only numerical splits and single-target models are supported.
type XGBoost struct {
	objective    string
	version      string
	baseMargin   float32
	link         func(float64) float64
	featureNames []string
	numFeature   int
	trees        []tree
	treeWeights  []float32
}

type tree struct {
	left        []int32
	right       []int32
	splitIndex  []int32
	splitCond   []float32
	defaultLeft []bool
}

// leaf walks the tree for x and returns the leaf value. Values compare as
// float32, the precision XGBoost stores split conditions with.
func (t *tree) leaf(x []float64) float32 {
	n := int32(0)
	for t.left[n] != -1 {
		idx := t.splitIndex[n]
		v := math.NaN()
		if int(idx) < len(x) {
			v = x[idx]
		}

		switch {
		case math.IsNaN(v):
			if t.defaultLeft[n] {
				n = t.left[n]
			} else {
				n = t.right[n]
			}
		case float32(v) < t.splitCond[n]:
			n = t.left[n]
		default:
			n = t.right[n]
		}
	}
	// leaf values are kept in split_conditions
	return t.splitCond[n]
}

func (m *XGBoost) Objective() string {
	return m.objective
}

// Version is the XGBoost version that wrote the artifact, e.g. "2.0.3".
func (m *XGBoost) Version() string {
	return m.version
}

func (m *XGBoost) NumTrees() int {
	return len(m.trees)
}

func (m *XGBoost) FeatureNames() []string {
	return append([]string(nil), m.featureNames...)
}

// CheckColumns reports whether vectors with the given columns can be fed to
// the model: every named model feature must be among them, and a model
// without names needs exactly num_feature columns.
func (m *XGBoost) CheckColumns(columns []string) error {
	names := m.FeatureNames()
	if len(names) == 0 {
		if m.numFeature > 0 && len(columns) != m.numFeature {
			return fmt.Errorf("%w: model expects %d features, got %d columns", ErrFeatureMismatch, m.numFeature, len(columns))
		}
		return nil
	}

	var missing []string
	for _, name := range names {
		if !slices.Contains(columns, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: columns lack model features %v", ErrFeatureMismatch, missing)
	}
	return nil
}

// Predict evaluates the ensemble on v. When the artifact carries feature names
// the vector columns are matched by name, otherwise by position. NaN values
// are missing and follow the default branch.
func (m *XGBoost) Predict(v features.Vector) (float64, error) {
	var x []float64
	if len(m.featureNames) > 0 {
		x = make([]float64, len(m.featureNames))
		for i, name := range m.featureNames {
			val, ok := v.Get(name)
			if !ok {
				return 0, fmt.Errorf("%w: vector has no %s", ErrFeatureMismatch, name)
			}
			x[i] = val
		}
	} else {
		x = v.Values()
		if m.numFeature > 0 && len(x) != m.numFeature {
			return 0, fmt.Errorf("%w: model expects %d features, got %d", ErrFeatureMismatch, m.numFeature, len(x))
		}
	}

	var sum float32
	for i := range m.trees {
		leaf := m.trees[i].leaf(x)
		if m.treeWeights != nil {
			leaf *= m.treeWeights[i]
		}
		sum += leaf
	}

	return m.link(float64(sum + m.baseMargin)), nil
}

type xgbModelFile struct {
	Learner struct {
		FeatureNames      []string        `json:"feature_names"`
		GradientBooster   json.RawMessage `json:"gradient_booster"`
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumClass   string `json:"num_class"`
			NumFeature string `json:"num_feature"`
			NumTarget  string `json:"num_target"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
	Version []int `json:"version"`
}

type xgbBooster struct {
	Name  string       `json:"name"`
	Model *xgbTreeList `json:"model"`
	// dart keeps the tree model one level deeper, plus per tree weights
	GBTree *struct {
		Model xgbTreeList `json:"model"`
	} `json:"gbtree"`
	WeightDrop []float64 `json:"weight_drop"`
}

type xgbTreeList struct {
	Trees []xgbTree `json:"trees"`
}

type xgbTree struct {
	LeftChildren    []int32    `json:"left_children"`
	RightChildren   []int32    `json:"right_children"`
	SplitIndices    []int32    `json:"split_indices"`
	SplitConditions []float64  `json:"split_conditions"`
	DefaultLeft     []flexBool `json:"default_left"`
	SplitType       []int      `json:"split_type"`
}

// flexBool accepts both 0/1 and false/true; XGBoost versions differ here.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "true", "1":
		*b = true
	case "false", "0":
		*b = false
	default:
		return fmt.Errorf("invalid bool value: %s", data)
	}
	return nil
}

func LoadXGBoostModel(path string) (*XGBoost, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	return ParseXGBoostModel(f)
}

func ParseXGBoostModel(r io.Reader) (*XGBoost, error) {
	var mf xgbModelFile
	if err := json.NewDecoder(r).Decode(&mf); err != nil {
		return nil, fmt.Errorf("decode xgboost model: %w", err)
	}
	learner := mf.Learner

	if n := learner.LearnerModelParam.NumClass; n != "" && n != "0" && n != "1" {
		return nil, fmt.Errorf("multi-class models not supported, num_class: %s", n)
	}
	if n := learner.LearnerModelParam.NumTarget; n != "" && n != "1" {
		return nil, fmt.Errorf("multi-target models not supported, num_target: %s", n)
	}

	baseScore, err := parseBaseScore(learner.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}

	m := &XGBoost{
		objective:    learner.Objective.Name,
		version:      formatVersion(mf.Version),
		featureNames: learner.FeatureNames,
	}
	if nf := learner.LearnerModelParam.NumFeature; nf != "" {
		if m.numFeature, err = cast.ToIntE(nf); err != nil {
			return nil, fmt.Errorf("invalid num_feature %q: %w", nf, err)
		}
	}

	var baseMargin float64
	baseMargin, m.link, err = objectiveLink(m.objective, baseScore)
	if err != nil {
		return nil, err
	}
	m.baseMargin = float32(baseMargin)

	if len(learner.GradientBooster) == 0 {
		return nil, errors.New("model has no gradient_booster")
	}
	var booster xgbBooster
	if err := json.Unmarshal(learner.GradientBooster, &booster); err != nil {
		return nil, fmt.Errorf("decode gradient booster: %w", err)
	}

	var rawTrees []xgbTree
	switch booster.Name {
	case "gbtree":
		if booster.Model == nil {
			return nil, errors.New("gbtree booster has no model")
		}
		rawTrees = booster.Model.Trees
	case "dart":
		if booster.GBTree == nil {
			return nil, errors.New("dart booster has no gbtree")
		}
		rawTrees = booster.GBTree.Model.Trees
		if len(booster.WeightDrop) != len(rawTrees) {
			return nil, fmt.Errorf("dart booster: %d weights for %d trees", len(booster.WeightDrop), len(rawTrees))
		}
		m.treeWeights = make([]float32, len(booster.WeightDrop))
		for i, w := range booster.WeightDrop {
			m.treeWeights[i] = float32(w)
		}
	default:
		return nil, fmt.Errorf("unsupported booster: %q", booster.Name)
	}

	m.trees = make([]tree, 0, len(rawTrees))
	for i, rt := range rawTrees {
		t, err := buildTree(rt)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		m.trees = append(m.trees, t)
	}

	return m, nil
}

func buildTree(rt xgbTree) (tree, error) {
	n := len(rt.LeftChildren)
	if n == 0 {
		return tree{}, errors.New("empty tree")
	}
	if len(rt.RightChildren) != n || len(rt.SplitIndices) != n ||
		len(rt.SplitConditions) != n || len(rt.DefaultLeft) != n {
		return tree{}, errors.New("inconsistent node arrays")
	}
	for _, st := range rt.SplitType {
		if st != 0 {
			return tree{}, errors.New("categorical splits not supported")
		}
	}

	t := tree{
		left:        rt.LeftChildren,
		right:       rt.RightChildren,
		splitIndex:  rt.SplitIndices,
		splitCond:   make([]float32, n),
		defaultLeft: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		t.splitCond[i] = float32(rt.SplitConditions[i])
		t.defaultLeft[i] = bool(rt.DefaultLeft[i])

		l, r := t.left[i], t.right[i]
		if l == -1 {
			continue
		}
		// children always come after their parent; this also rules out cycles
		if l <= int32(i) || r <= int32(i) || int(l) >= n || int(r) >= n {
			return tree{}, fmt.Errorf("node %d has invalid children (%d, %d)", i, l, r)
		}
		if t.splitIndex[i] < 0 {
			return tree{}, fmt.Errorf("node %d has invalid split index %d", i, t.splitIndex[i])
		}
	}

	return t, nil
}

// parseBaseScore handles both "5E-1" and the bracketed "[5E-1]" newer
// XGBoost versions write.
func parseBaseScore(s string) (float64, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]"))
	if s == "" {
		return 0.5, nil
	}
	if strings.Contains(s, ",") {
		return 0, fmt.Errorf("multi-target base_score not supported: %s", s)
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, fmt.Errorf("invalid base_score %q: %w", s, err)
	}
	return v, nil
}

func objectiveLink(objective string, baseScore float64) (float64, func(float64) float64, error) {
	identity := func(v float64) float64 { return v }

	switch objective {
	case "", "reg:squarederror", "reg:linear", "reg:squaredlogerror",
		"reg:pseudohubererror", "reg:absoluteerror", "reg:quantileerror":
		return baseScore, identity, nil
	case "reg:logistic", "binary:logistic":
		if baseScore <= 0 || baseScore >= 1 {
			return 0, nil, fmt.Errorf("base_score %v out of (0, 1) for %s", baseScore, objective)
		}
		sigmoid := func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
		return -math.Log(1/baseScore - 1), sigmoid, nil
	case "count:poisson", "reg:gamma", "reg:tweedie":
		if baseScore <= 0 {
			return 0, nil, fmt.Errorf("base_score %v must be positive for %s", baseScore, objective)
		}
		return math.Log(baseScore), math.Exp, nil
	default:
		return 0, nil, fmt.Errorf("unsupported objective: %q", objective)
	}
}

func formatVersion(v []int) string {
	parts := make([]string, len(v))
	for i, p := range v {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}
