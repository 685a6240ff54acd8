package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/botel-ai/pms-mcp-gateway/internal/pms"
)

const descriptionPreviewLen = 200

// NewPropertyContextTool builds the context-aggregation operation: it pulls
// the customer's full property portfolio and renders it as one markdown
// document for the voice agent's context window.
func NewPropertyContextTool(api pms.API, log *slog.Logger) *Tool {
	if log == nil {
		log = slog.Default()
	}
	return &Tool{
		Name:        "get_customer_properties_context",
		Description: "Fetch all properties for the customer and their detailed information to provide context to the LLM",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"include_inactive": {
					Type:        "boolean",
					Description: "Include inactive properties (default: false)",
					Default:     json.RawMessage("false"),
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) ([]Content, error) {
			return propertyContext(ctx, api, log, argBool(args, "include_inactive", false))
		},
	}
}

func propertyContext(ctx context.Context, api pms.API, log *slog.Logger, includeInactive bool) ([]Content, error) {
	page, err := api.ListProperties(ctx, includeInactive)
	if err != nil {
		// The agent reads this aloud, so upstream failures become
		// explanatory text rather than a dead session.
		log.Error("property listing failed", "error", err)
		return Textf("Error fetching property context: %v", err), nil
	}
	if page == nil || len(page.Items) == 0 {
		return Text("No properties found for this customer."), nil
	}

	activeCount := 0
	for _, p := range page.Items {
		if p.Status {
			activeCount++
		}
	}

	var b strings.Builder
	b.WriteString("# Customer Property Context\n")
	fmt.Fprintf(&b, "Total Properties: %d\n", page.TotalCount)
	fmt.Fprintf(&b, "Active Properties: %d\n\n", activeCount)

	for idx, summary := range page.Items {
		status := "Inactive"
		if summary.Status {
			status = "Active"
		}
		fmt.Fprintf(&b, "## Property %d: %s\n", idx+1, displayName(summary.Name))
		fmt.Fprintf(&b, "- **Status**: %s\n", status)
		fmt.Fprintf(&b, "- **ID**: %s\n", summary.ID)

		// Detail fetches are best-effort: one property's failure is logged
		// and skipped, never aborting the whole aggregation.
		if summary.ID != "" && summary.Status {
			detail, err := api.GetProperty(ctx, summary.ID)
			if err != nil {
				log.Warn("could not fetch property details", "property_id", summary.ID, "error", err)
			} else if detail != nil {
				writePropertyDetail(&b, detail)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "This customer has %d properties in the system.\n", page.TotalCount)
	if activeCount > 0 {
		fmt.Fprintf(&b, "%d properties are currently active and available for bookings.\n", activeCount)
	}
	if inactive := page.TotalCount - activeCount; inactive > 0 {
		fmt.Fprintf(&b, "%d properties are inactive.\n", inactive)
	}

	return Text(b.String()), nil
}

func writePropertyDetail(b *strings.Builder, detail *pms.PropertyDetail) {
	var location []string
	for _, part := range []string{detail.Street, detail.City, detail.State, detail.CountryCode} {
		if part != "" {
			location = append(location, part)
		}
	}
	if len(location) > 0 {
		fmt.Fprintf(b, "- **Location**: %s\n", strings.Join(location, ", "))
	}
	if detail.MaxOccupancy > 0 {
		fmt.Fprintf(b, "- **Max Occupancy**: %d guests\n", detail.MaxOccupancy)
	}
	if detail.MaxAdults > 0 {
		fmt.Fprintf(b, "- **Max Adults**: %d\n", detail.MaxAdults)
	}
	if detail.TypeCode != "" {
		fmt.Fprintf(b, "- **Type**: %s\n", detail.TypeCode)
	}
	if detail.LicenseCode != "" {
		fmt.Fprintf(b, "- **License**: %s\n", detail.LicenseCode)
	}
	if detail.Latitude != 0 && detail.Longitude != 0 {
		fmt.Fprintf(b, "- **Coordinates**: %g, %g\n", detail.Latitude, detail.Longitude)
	}
	if detail.Description != "" {
		desc := detail.Description
		if len(desc) > descriptionPreviewLen {
			desc = desc[:descriptionPreviewLen] + "..."
		}
		fmt.Fprintf(b, "- **Description**: %s\n", desc)
	}
}

func displayName(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}
