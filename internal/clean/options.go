// Package clean implements the table cleaning routines: missing-value
// imputation, deduplication, normalization and redundant-feature removal.
// Every routine returns a new DataFrame and leaves its input untouched.
package clean

import (
	"strings"

	"github.com/paveg/prep/internal/validation"
)

// ImputeStrategy selects the statistic used to fill missing cells.
type ImputeStrategy string

const (
	ImputeMean   ImputeStrategy = "mean"
	ImputeMedian ImputeStrategy = "median"
	ImputeMode   ImputeStrategy = "mode"
)

// ImputeStrategies lists the accepted strategies.
var ImputeStrategies = []string{string(ImputeMean), string(ImputeMedian), string(ImputeMode)}

// ParseImputeStrategy converts a user-supplied name (case-insensitive) into a strategy.
func ParseImputeStrategy(s string) (ImputeStrategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if err := validation.ValidateOption(opImpute, "strategy", normalized, ImputeStrategies...); err != nil {
		return "", err
	}
	return ImputeStrategy(normalized), nil
}

// NormalizeMethod selects the rescaling applied to numeric columns.
type NormalizeMethod string

const (
	NormalizeMinMax   NormalizeMethod = "minmax"
	NormalizeStandard NormalizeMethod = "standard"
)

// NormalizeMethods lists the accepted methods.
var NormalizeMethods = []string{string(NormalizeMinMax), string(NormalizeStandard)}

// ParseNormalizeMethod converts a user-supplied name (case-insensitive) into a method.
func ParseNormalizeMethod(s string) (NormalizeMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if err := validation.ValidateOption(opNormalize, "method", normalized, NormalizeMethods...); err != nil {
		return "", err
	}
	return NormalizeMethod(normalized), nil
}

// DefaultTarget is the column imputation leaves alone unless WithTarget says otherwise.
const DefaultTarget = "target"

// DefaultThreshold is the correlation cutoff used by the CLI and config defaults.
const DefaultThreshold = 0.9

const (
	opImpute    = "ImputeMissingValues"
	opDedupe    = "RemoveDuplicates"
	opNormalize = "NormalizeData"
	opRedundant = "RemoveRedundantFeatures"
)

// ImputeOption configures ImputeMissingValues.
type ImputeOption func(*imputeConfig)

type imputeConfig struct {
	target string
}

// WithTarget names the numeric column that mean, median and mode imputation skip.
func WithTarget(name string) ImputeOption {
	return func(c *imputeConfig) {
		if name != "" {
			c.target = name
		}
	}
}
