package sankey

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"figaroflows/internal/model"
)

func TestBuild(t *testing.T) {
	records := []model.FlowRecord{
		{IndustryCode: "B01", FlowType: model.FlowImports, Value: 200.5},
		{IndustryCode: "B02", FlowType: model.FlowImports, Value: 0},
		{IndustryCode: "B01", FlowType: model.FlowExports, Value: 400.5},
	}

	fig := Build(2020, records)

	require.Len(t, fig.Data, 1)
	trace := fig.Data[0]
	assert.Equal(t, "sankey", trace.Type)
	assert.Equal(t, []string{"B01", "Total Imports", "B02", "Total Exports"}, trace.Node.Label)
	assert.Equal(t, []int{0, 2, 0}, trace.Link.Source)
	assert.Equal(t, []int{1, 1, 3}, trace.Link.Target)
	assert.Equal(t, []float64{200.5, 0, 400.5}, trace.Link.Value)
	assert.Equal(t, 15, trace.Node.Pad)
	assert.Equal(t, 20, trace.Node.Thickness)
	assert.Equal(t, "FIGARO Trade Flows - 2020", fig.Layout.Title.Text)
	assert.Equal(t, 800, fig.Layout.Height)
}

func TestBuild_Empty(t *testing.T) {
	fig := Build(1999, nil)

	payload, err := json.Marshal(fig)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	data := decoded["data"].([]any)
	require.Len(t, data, 1)
	trace := data[0].(map[string]any)
	assert.Equal(t, ".0f", trace["valueformat"])
	assert.Equal(t, "€", trace["valuesuffix"])
	assert.Equal(t, []any{}, trace["node"].(map[string]any)["label"])
	assert.Equal(t, []any{}, trace["link"].(map[string]any)["value"])
}
