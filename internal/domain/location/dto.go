package location

// CreateLocationRequest for POST /locations
type CreateLocationRequest struct {
	Name      string   `json:"name" validate:"required,notblank,max=255"`
	Address   string   `json:"address" validate:"required,notblank,max=500"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// LocationIDResponse is returned after resolving a location
type LocationIDResponse struct {
	ID int64 `json:"id"`
}
