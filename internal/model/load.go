package model

import (
	"fmt"
)

// Load reads the metadata and the XGBoost artifact. When either fails, the
// returned metadata are the defaults, the model is nil and err says why;
// callers keep running without a model. A model that cannot take the
// metadata columns counts as a failed load.
func Load(modelPath, metaPath string) (Metadata, *XGBoost, error) {
	meta, err := LoadMetadata(metaPath)
	if err != nil {
		return DefaultMetadata(), nil, fmt.Errorf("load metadata [%s]: %w", metaPath, err)
	}

	xgb, err := LoadXGBoostModel(modelPath)
	if err != nil {
		return DefaultMetadata(), nil, fmt.Errorf("load model [%s]: %w", modelPath, err)
	}

	if err := xgb.CheckColumns(meta.FeatureColumns); err != nil {
		return DefaultMetadata(), nil, fmt.Errorf("model [%s] does not fit metadata [%s]: %w", modelPath, metaPath, err)
	}

	return meta, xgb, nil
}
