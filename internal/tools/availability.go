package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/botel-ai/pms-mcp-gateway/internal/pms"
)

const dateLayout = "2006-01-02"

// NewAvailabilityTool builds the availability/pricing operation. All
// business-rule rejections (bad dates, over capacity, conflicts) come back
// as explanatory text; only unexpected upstream failures return errors.
func NewAvailabilityTool(api pms.API, log *slog.Logger) *Tool {
	if log == nil {
		log = slog.Default()
	}
	return &Tool{
		Name:        "check_property_availability_and_pricing",
		Description: "Check if a property is available for the requested dates and calculate the total price for the stay",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"property_id": {
					Type:        "string",
					Description: "The property to check",
				},
				"check_in_date": {
					Type:        "string",
					Description: "Check-in date (YYYY-MM-DD)",
				},
				"check_out_date": {
					Type:        "string",
					Description: "Check-out date (YYYY-MM-DD)",
				},
				"guest_count": {
					Type:        "integer",
					Description: "Number of guests",
				},
				"include_pets": {
					Type:        "boolean",
					Description: "Whether pets are part of the stay (default: false)",
				},
			},
			Required: []string{"property_id", "check_in_date", "check_out_date", "guest_count"},
		},
		Handler: func(ctx context.Context, args map[string]any) ([]Content, error) {
			return checkAvailability(ctx, api, log, args)
		},
	}
}

func checkAvailability(ctx context.Context, api pms.API, log *slog.Logger, args map[string]any) ([]Content, error) {
	propertyID, ok := argString(args, "property_id")
	if !ok {
		return Text("Missing required argument: property_id"), nil
	}
	checkInRaw, ok := argString(args, "check_in_date")
	if !ok {
		return Text("Missing required argument: check_in_date"), nil
	}
	checkOutRaw, ok := argString(args, "check_out_date")
	if !ok {
		return Text("Missing required argument: check_out_date"), nil
	}
	guests, ok := argInt(args, "guest_count")
	if !ok || guests <= 0 {
		return Text("Missing required argument: guest_count"), nil
	}
	includePets := argBool(args, "include_pets", false)

	checkIn, err := time.Parse(dateLayout, checkInRaw)
	if err != nil {
		return Textf("Invalid check-in date %q: expected YYYY-MM-DD.", checkInRaw), nil
	}
	checkOut, err := time.Parse(dateLayout, checkOutRaw)
	if err != nil {
		return Textf("Invalid check-out date %q: expected YYYY-MM-DD.", checkOutRaw), nil
	}
	if !checkOut.After(checkIn) {
		return Textf("Invalid date range: check-out date %s must be after check-in date %s.", checkOutRaw, checkInRaw), nil
	}

	property, err := api.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("fetch property %s: %w", propertyID, err)
	}
	if !property.Status {
		return Textf("Property %s is currently inactive and cannot be booked.", displayName(property.Name)), nil
	}
	if property.MaxOccupancy > 0 && guests > property.MaxOccupancy {
		return Textf("Property %s sleeps at most %d guests; %d were requested.",
			displayName(property.Name), property.MaxOccupancy, guests), nil
	}

	reservations, err := api.ListReservations(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("fetch reservations for %s: %w", propertyID, err)
	}
	if conflict := findConflict(reservations, checkIn, checkOut, log); conflict != nil {
		return Textf("Property %s is NOT available for %s to %s: conflicts with an existing booking from %s to %s.",
			displayName(property.Name), checkInRaw, checkOutRaw, conflict.CheckIn, conflict.CheckOut), nil
	}

	return Text(priceBreakdown(property, checkIn, checkOut, guests, includePets)), nil
}

// findConflict applies the half-open overlap test [checkIn, checkOut) against
// each non-cancelled reservation. Reservations with unparseable dates are
// logged and skipped rather than treated as conflicts.
func findConflict(page *pms.ReservationPage, checkIn, checkOut time.Time, log *slog.Logger) *pms.Reservation {
	if page == nil {
		return nil
	}
	for i := range page.Items {
		res := &page.Items[i]
		if strings.EqualFold(res.Status, "cancelled") {
			continue
		}
		start, err := parseReservationDate(res.CheckIn)
		if err != nil {
			log.Warn("skipping reservation with bad check-in", "reservation_id", res.ID, "error", err)
			continue
		}
		end, err := parseReservationDate(res.CheckOut)
		if err != nil {
			log.Warn("skipping reservation with bad check-out", "reservation_id", res.ID, "error", err)
			continue
		}
		if !(checkOut.Before(start) || checkOut.Equal(start) || checkIn.After(end) || checkIn.Equal(end)) {
			return res
		}
	}
	return nil
}

// parseReservationDate accepts plain dates and the PMS's ISO datetimes by
// reading the date prefix.
func parseReservationDate(s string) (time.Time, error) {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	return time.Parse(dateLayout, s)
}

func priceBreakdown(p *pms.PropertyDetail, checkIn, checkOut time.Time, guests int, includePets bool) string {
	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	currency := p.Currency
	if currency == "" {
		currency = "EUR"
	}

	baseTotal := p.BasePrice * float64(nights)
	total := baseTotal

	var b strings.Builder
	fmt.Fprintf(&b, "Property %s is AVAILABLE from %s to %s (%d nights).\n\n",
		displayName(p.Name), checkIn.Format(dateLayout), checkOut.Format(dateLayout), nights)
	b.WriteString("Pricing breakdown:\n")
	fmt.Fprintf(&b, "- Base rate: %s %.2f x %d nights = %s %.2f\n",
		currency, p.BasePrice, nights, currency, baseTotal)

	if extra := guests - p.IncludedGuests; p.IncludedGuests > 0 && extra > 0 && p.ExtraPersonFee > 0 {
		extraTotal := p.ExtraPersonFee * float64(extra) * float64(nights)
		total += extraTotal
		fmt.Fprintf(&b, "- Extra person fee: %s %.2f x %d guests x %d nights = %s %.2f\n",
			currency, p.ExtraPersonFee, extra, nights, currency, extraTotal)
	}
	if p.CleaningFee > 0 {
		total += p.CleaningFee
		fmt.Fprintf(&b, "- Cleaning fee: %s %.2f\n", currency, p.CleaningFee)
	}
	if includePets && p.PetFee > 0 {
		total += p.PetFee
		fmt.Fprintf(&b, "- Pet fee: %s %.2f\n", currency, p.PetFee)
	}
	fmt.Fprintf(&b, "\nTotal for %d guests: %s %.2f", guests, currency, total)
	return b.String()
}
