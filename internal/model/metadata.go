package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/2beens/calorietracker/internal/features"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultThreshold = 30.0
	DefaultSlope     = 0.0
)

// Metadata holds the parameters of the hybrid model that live next to the
// regression artifact.
type Metadata struct {
	Threshold      float64  `json:"threshold" toml:"threshold"`
	Slope          float64  `json:"slope" toml:"slope"`
	FeatureColumns []string `json:"columns" toml:"columns"`
}

func DefaultMetadata() Metadata {
	return Metadata{
		Threshold:      DefaultThreshold,
		Slope:          DefaultSlope,
		FeatureColumns: features.DefaultColumns(),
	}
}

type metadataFile struct {
	Threshold      *float64 `json:"threshold" toml:"threshold"`
	Slope          *float64 `json:"slope" toml:"slope"`
	FeatureColumns []string `json:"columns" toml:"columns"`
}

// LoadMetadata reads the metadata file (.json or .toml). A missing file yields
// the defaults, and so do missing fields. A file that cannot be parsed, or
// describes an unusable model, is an error.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warnf("model metadata [%s] not found, using defaults", path)
		return DefaultMetadata(), nil
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}

	var mf metadataFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &mf); err != nil {
			return Metadata{}, fmt.Errorf("decode toml metadata: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &mf); err != nil {
			return Metadata{}, fmt.Errorf("decode json metadata: %w", err)
		}
	}

	meta := DefaultMetadata()
	if mf.Threshold != nil {
		meta.Threshold = *mf.Threshold
	}
	if mf.Slope != nil {
		meta.Slope = *mf.Slope
	}
	if len(mf.FeatureColumns) > 0 {
		meta.FeatureColumns = mf.FeatureColumns
	}

	if err := meta.Validate(); err != nil {
		return Metadata{}, err
	}

	return meta, nil
}

func (m Metadata) Validate() error {
	if math.IsNaN(m.Threshold) || math.IsInf(m.Threshold, 0) {
		return fmt.Errorf("invalid threshold: %v", m.Threshold)
	}
	if math.IsNaN(m.Slope) || math.IsInf(m.Slope, 0) {
		return fmt.Errorf("invalid slope: %v", m.Slope)
	}
	if !slices.Contains(m.FeatureColumns, features.ColDuration) {
		return fmt.Errorf("feature columns %v do not contain %s", m.FeatureColumns, features.ColDuration)
	}
	return nil
}
