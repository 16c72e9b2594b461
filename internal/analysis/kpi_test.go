package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func revenueRegion() *RecordSet {
	return records([]string{"revenue", "region"},
		[]any{100, "A"},
		[]any{200, "A"},
		[]any{300, "B"},
	)
}

func TestExtractKPIsRevenueRegion(t *testing.T) {
	got := ExtractKPIs(profiled(t, revenueRegion()), DefaultThresholds(), nil)
	want := []KPI{
		{Name: "Revenue Average", Value: 200, Unit: "", Category: CategoryAverage},
		{Name: "Revenue Total", Value: 600, Unit: "", Category: CategoryTotal},
		{Name: "Revenue Maximum", Value: 300, Unit: "", Category: CategoryMaximum},
		{Name: "Revenue Minimum", Value: 100, Unit: "", Category: CategoryMinimum},
		{Name: "Region Distinct Values", Value: 2, Unit: "count", Category: CategoryDiversity},
		{Name: "Total Record Count", Value: 3, Unit: "count", Category: CategoryGeneral},
		{Name: "Data Completeness", Value: 100, Unit: "%", Category: CategoryQuality},
	}
	assert.Equal(t, want, got)
}

func TestExtractKPIsEmptyDataset(t *testing.T) {
	got := ExtractKPIs(profiled(t, &RecordSet{Columns: []string{"revenue", "region"}}), DefaultThresholds(), nil)
	require.Len(t, got, 2)
	assert.Equal(t, "Total Record Count", got[0].Name)
	assert.Zero(t, got[0].Value)
	assert.Equal(t, KPI{Name: "Data Completeness", Value: 100, Unit: "%", Category: CategoryQuality}, got[1])
}

func TestExtractKPIsSkipsAllNullColumns(t *testing.T) {
	got := ExtractKPIs(profiled(t, records([]string{"x", "y"},
		[]any{nil, 1},
		[]any{nil, 2},
	)), DefaultThresholds(), nil)
	require.Len(t, got, 6)
	for _, k := range got {
		assert.NotContains(t, k.Name, "X ")
	}
	// two of four cells are null
	assert.Equal(t, 50.0, got[5].Value)
}

func TestExtractKPIsEnergyUnit(t *testing.T) {
	got := ExtractKPIs(profiled(t, columnRecords("consumption_mwh", 1.5, 2.5)), DefaultThresholds(), nil)
	require.NotEmpty(t, got)
	assert.Equal(t, "Consumption Mwh Average", got[0].Name)
	assert.Equal(t, "MWh", got[0].Unit)
	assert.Equal(t, 2.0, got[0].Value)
}

func TestExtractKPIsRoundsToTwoDecimals(t *testing.T) {
	got := ExtractKPIs(profiled(t, columnRecords("price", 1, 1, 2)), DefaultThresholds(), nil)
	assert.Equal(t, 1.33, got[0].Value)
	// one of four cells missing
	got = ExtractKPIs(profiled(t, records([]string{"a", "b"}, []any{1, 2}, []any{3, nil})), DefaultThresholds(), nil)
	assert.Equal(t, 75.0, got[len(got)-1].Value)
}

func TestExtractKPIsSentinels(t *testing.T) {
	assert.Equal(t, []KPI{defaultKPI}, ExtractKPIs(nil, DefaultThresholds(), nil))

	// the sum of two huge values overflows
	got := ExtractKPIs(profiled(t, columnRecords("x", 1e308, 1e308)), DefaultThresholds(), nil)
	assert.Equal(t, []KPI{errorKPI}, got)
}

func TestExtractKPIsMultiDataset(t *testing.T) {
	n, err := Normalize(Input{Sheets: []Sheet{
		{Name: "North", Records: *columnRecords("sales", 10, 20)},
		{Name: "South", Records: *records([]string{"sales"}, []any{30}, []any{nil})},
	}}, nil)
	require.NoError(t, err)
	var sets []ProfiledDataset
	for _, ds := range n.Datasets {
		sets = append(sets, ProfiledDataset{Dataset: ds, Profile: Profile(ds, nil)})
	}
	got := ExtractKPIs(sets, DefaultThresholds(), nil)
	require.Len(t, got, 10)
	assert.Equal(t, "North - Sales Average", got[0].Name)
	assert.Equal(t, "South - Sales Average", got[4].Name)
	assert.Equal(t, KPI{Name: "Total Record Count", Value: 4, Unit: "count", Category: CategoryGeneral}, got[8])
	assert.Equal(t, 75.0, got[9].Value)
}

func TestExtractKPIsFollowsCategoricalColumns(t *testing.T) {
	rs := records([]string{"region", "channel", "segment"},
		[]any{"A", "web", "smb"},
		[]any{"B", "store", "smb"},
		[]any{"A", "web", "ent"},
	)
	distinct := func(kpis []KPI) []string {
		var names []string
		for _, k := range kpis {
			if k.Category == CategoryDiversity {
				names = append(names, k.Name)
			}
		}
		return names
	}

	assert.Equal(t, []string{"Region Distinct Values", "Channel Distinct Values"}, distinct(ExtractKPIs(profiled(t, rs), DefaultThresholds(), nil)))

	th := DefaultThresholds()
	th.CategoricalColumns = 1
	sets := profiled(t, rs)
	assert.Equal(t, []string{"Region Distinct Values"}, distinct(ExtractKPIs(sets, th, nil)))
	trends := ClassifyTrends(sets, th, nil)
	require.Len(t, trends, 1)
	assert.Equal(t, "Region Distribution", trends[0].MetricName)
}
