package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botel-ai/pms-mcp-gateway/internal/pms"
)

func portfolioFake() *fakePMS {
	return &fakePMS{
		page: &pms.PropertyPage{
			TotalCount: 3,
			Items: []pms.PropertySummary{
				{ID: "prop-1", Name: "Beach House", Status: true},
				{ID: "prop-2", Name: "City Flat", Status: true},
				{ID: "prop-3", Name: "Old Barn", Status: false},
			},
		},
		details: map[string]*pms.PropertyDetail{
			"prop-1": {
				ID: "prop-1", Name: "Beach House", Status: true,
				City: "Lagos", CountryCode: "PT",
				MaxOccupancy: 6, TypeCode: "VILLA",
				Latitude: 37.1, Longitude: -8.67,
			},
			"prop-2": {
				ID: "prop-2", Name: "City Flat", Status: true,
				Street: "Main St 4", City: "Lisbon",
				MaxOccupancy: 2,
				Description:  strings.Repeat("x", 250),
			},
		},
		detailErr: map[string]error{},
	}
}

func callContext(t *testing.T, f *fakePMS, args map[string]any) string {
	t.Helper()
	tool := NewPropertyContextTool(f, nil)
	content, err := tool.Handler(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, content, 1)
	return content[0].Text
}

func TestPropertyContext_AggregatesPortfolio(t *testing.T) {
	f := portfolioFake()
	text := callContext(t, f, map[string]any{"include_inactive": true})

	assert.Contains(t, text, "# Customer Property Context")
	assert.Contains(t, text, "Total Properties: 3")
	assert.Contains(t, text, "Active Properties: 2")
	assert.Contains(t, text, "## Property 1: Beach House")
	assert.Contains(t, text, "Lagos, PT")
	assert.Contains(t, text, "**Max Occupancy**: 6 guests")
	assert.Contains(t, text, "**Type**: VILLA")
	assert.Contains(t, text, "## Property 3: Old Barn")
	assert.Contains(t, text, "**Status**: Inactive")
	assert.Contains(t, text, "1 properties are inactive.")
}

func TestPropertyContext_TruncatesLongDescription(t *testing.T) {
	text := callContext(t, portfolioFake(), map[string]any{"include_inactive": true})
	assert.Contains(t, text, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, text, strings.Repeat("x", 201))
}

func TestPropertyContext_ActiveOnlyByDefault(t *testing.T) {
	text := callContext(t, portfolioFake(), map[string]any{})
	assert.NotContains(t, text, "Old Barn")
}

func TestPropertyContext_NoProperties(t *testing.T) {
	text := callContext(t, &fakePMS{}, map[string]any{})
	assert.Equal(t, "No properties found for this customer.", text)
}

func TestPropertyContext_DetailFailureIsSkipped(t *testing.T) {
	f := portfolioFake()
	f.detailErr["prop-1"] = errors.New("detail endpoint down")

	text := callContext(t, f, map[string]any{"include_inactive": true})
	// The failing property still appears with its summary fields; the other
	// property's detail is intact.
	assert.Contains(t, text, "## Property 1: Beach House")
	assert.NotContains(t, text, "Lagos")
	assert.Contains(t, text, "Main St 4")
}

func TestPropertyContext_ListFailureBecomesText(t *testing.T) {
	f := portfolioFake()
	f.listErr = errors.New("upstream 502")

	text := callContext(t, f, map[string]any{})
	assert.Contains(t, text, "Error fetching property context")
	assert.Contains(t, text, "upstream 502")
}
