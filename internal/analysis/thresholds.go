package analysis

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Thresholds tunes the trend classifier and the action synthesizer.
// Percentages are expressed on a 0-100 scale, ratios as multipliers.
type Thresholds struct {
	// Time-series procedure.
	TimeSeriesMinValues int     `mapstructure:"time_series_min_values" yaml:"time_series_min_values" json:"time_series_min_values" validate:"gte=3"`
	TimeSeriesUpRatio   float64 `mapstructure:"time_series_up_ratio" yaml:"time_series_up_ratio" json:"time_series_up_ratio" validate:"gt=1"`
	TimeSeriesDownRatio float64 `mapstructure:"time_series_down_ratio" yaml:"time_series_down_ratio" json:"time_series_down_ratio" validate:"gt=0,lt=1"`

	// Distribution-shape procedure.
	HighCV             float64 `mapstructure:"high_cv" yaml:"high_cv" json:"high_cv" validate:"gtfield=LowCV"`
	LowCV              float64 `mapstructure:"low_cv" yaml:"low_cv" json:"low_cv" validate:"gte=0"`
	UpperQuartileRatio float64 `mapstructure:"upper_quartile_ratio" yaml:"upper_quartile_ratio" json:"upper_quartile_ratio" validate:"gt=1"`
	LowerQuartileRatio float64 `mapstructure:"lower_quartile_ratio" yaml:"lower_quartile_ratio" json:"lower_quartile_ratio" validate:"gt=0,lt=1"`

	// Categorical-dominance procedure.
	DominantHigh       float64 `mapstructure:"dominant_high" yaml:"dominant_high" json:"dominant_high" validate:"gtfield=DominantLow,lte=100"`
	DominantLow        float64 `mapstructure:"dominant_low" yaml:"dominant_low" json:"dominant_low" validate:"gte=0"`
	CategoricalColumns int     `mapstructure:"categorical_columns" yaml:"categorical_columns" json:"categorical_columns" validate:"gte=0"`

	// Action rules.
	HighKPIValue     float64 `mapstructure:"high_kpi_value" yaml:"high_kpi_value" json:"high_kpi_value" validate:"gtfield=LowKPIValue"`
	LowKPIValue      float64 `mapstructure:"low_kpi_value" yaml:"low_kpi_value" json:"low_kpi_value"`
	HighValueItems   int     `mapstructure:"high_value_items" yaml:"high_value_items" json:"high_value_items" validate:"gte=0"`
	LowValueItems    int     `mapstructure:"low_value_items" yaml:"low_value_items" json:"low_value_items" validate:"gte=0"`
	QualityFloor     float64 `mapstructure:"quality_floor" yaml:"quality_floor" json:"quality_floor" validate:"gte=0,lte=100"`
	GrowthMagnitude  float64 `mapstructure:"growth_magnitude" yaml:"growth_magnitude" json:"growth_magnitude" validate:"gte=0"`
	GrowthHigh       float64 `mapstructure:"growth_high" yaml:"growth_high" json:"growth_high" validate:"gtefield=GrowthMagnitude"`
	DeclineMagnitude float64 `mapstructure:"decline_magnitude" yaml:"decline_magnitude" json:"decline_magnitude" validate:"gte=0"`
	DeclineHigh      float64 `mapstructure:"decline_high" yaml:"decline_high" json:"decline_high" validate:"gtefield=DeclineMagnitude"`
	TrendItems       int     `mapstructure:"trend_items" yaml:"trend_items" json:"trend_items" validate:"gte=0"`
	StableMaxItems   int     `mapstructure:"stable_max_items" yaml:"stable_max_items" json:"stable_max_items" validate:"gte=0"`
	ReviewMinKPIs    int     `mapstructure:"review_min_kpis" yaml:"review_min_kpis" json:"review_min_kpis" validate:"gte=0"`
	MaxActions       int     `mapstructure:"max_actions" yaml:"max_actions" json:"max_actions" validate:"gte=1"`
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TimeSeriesMinValues: 5,
		TimeSeriesUpRatio:   1.10,
		TimeSeriesDownRatio: 0.90,

		HighCV:             50,
		LowCV:              15,
		UpperQuartileRatio: 1.3,
		LowerQuartileRatio: 0.7,

		DominantHigh:       70,
		DominantLow:        30,
		CategoricalColumns: 2,

		HighKPIValue:     100000,
		LowKPIValue:      1000,
		HighValueItems:   3,
		LowValueItems:    2,
		QualityFloor:     90,
		GrowthMagnitude:  20,
		GrowthHigh:       50,
		DeclineMagnitude: 15,
		DeclineHigh:      30,
		TrendItems:       2,
		StableMaxItems:   5,
		ReviewMinKPIs:    3,
		MaxActions:       8,
	}
}

// Validate checks the field constraints.
func (t Thresholds) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	return nil
}
