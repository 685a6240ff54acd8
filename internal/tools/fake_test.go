package tools

import (
	"context"
	"fmt"

	"github.com/botel-ai/pms-mcp-gateway/internal/pms"
)

// fakePMS serves canned PMS data to the tool handlers.
type fakePMS struct {
	page         *pms.PropertyPage
	details      map[string]*pms.PropertyDetail
	reservations map[string][]pms.Reservation

	listErr   error
	detailErr map[string]error
	resErr    error
}

func (f *fakePMS) ListProperties(ctx context.Context, includeInactive bool) (*pms.PropertyPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.page == nil {
		return &pms.PropertyPage{}, nil
	}
	if includeInactive {
		return f.page, nil
	}
	filtered := &pms.PropertyPage{TotalCount: f.page.TotalCount}
	for _, p := range f.page.Items {
		if p.Status {
			filtered.Items = append(filtered.Items, p)
		}
	}
	return filtered, nil
}

func (f *fakePMS) GetProperty(ctx context.Context, id string) (*pms.PropertyDetail, error) {
	if err := f.detailErr[id]; err != nil {
		return nil, err
	}
	detail, ok := f.details[id]
	if !ok {
		return nil, fmt.Errorf("property %s not found", id)
	}
	return detail, nil
}

func (f *fakePMS) ListReservations(ctx context.Context, propertyID string) (*pms.ReservationPage, error) {
	if f.resErr != nil {
		return nil, f.resErr
	}
	items := f.reservations[propertyID]
	return &pms.ReservationPage{Items: items, TotalCount: len(items)}, nil
}

func beachHouse() *pms.PropertyDetail {
	return &pms.PropertyDetail{
		ID:             "prop-1",
		Name:           "Beach House",
		Status:         true,
		MaxOccupancy:   6,
		IncludedGuests: 4,
		BasePrice:      100,
		CleaningFee:    50,
		PetFee:         25,
		ExtraPersonFee: 10,
		Currency:       "EUR",
	}
}
