package pms

// PropertyPage is the paged response of Property/GetAll.
type PropertyPage struct {
	Items      []PropertySummary `json:"items"`
	TotalCount int               `json:"totalCount"`
}

// PropertySummary is the listing row returned by Property/GetAll. Status is
// true for active properties.
type PropertySummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status bool   `json:"status"`
}

// PropertyDetail is the full record returned by Property/Get.
type PropertyDetail struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      bool   `json:"status"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	CountryCode string `json:"countryCode"`
	TypeCode    string `json:"typeCode"`
	LicenseCode string `json:"licenseCode"`
	Description string `json:"description"`

	MaxOccupancy int `json:"maxOccupancy"`
	MaxAdults    int `json:"maxAdults"`
	// IncludedGuests is the number of guests covered by the base rate;
	// anyone beyond it pays the extra-person fee. Zero means the PMS did not
	// configure a threshold and no surcharge applies.
	IncludedGuests int `json:"includedGuests"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	BasePrice      float64 `json:"basePrice"`
	CleaningFee    float64 `json:"cleaningFee"`
	PetFee         float64 `json:"petFee"`
	ExtraPersonFee float64 `json:"extraPersonFee"`
	Currency       string  `json:"currency"`
}

// ReservationPage is the paged response of Reservation/Get.
type ReservationPage struct {
	Items      []Reservation `json:"items"`
	TotalCount int           `json:"totalCount"`
}

type Reservation struct {
	ID          string  `json:"id"`
	CheckIn     string  `json:"checkIn"`
	CheckOut    string  `json:"checkOut"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"totalAmount"`
	Currency    string  `json:"currency"`
}
