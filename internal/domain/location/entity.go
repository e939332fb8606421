package location

// Location is a stored place, deduplicated by (Name, Address)
type Location struct {
	ID        int64   `db:"location_id" json:"id"`
	Name      string  `db:"location_name" json:"name"`
	Address   string  `db:"address_name" json:"address"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
}

// Place is a search hit that has not necessarily been stored
type Place struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
