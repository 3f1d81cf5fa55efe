package models

// Location is a (country, city) pair with map coordinates. Locations are
// created on demand when a machine references a new pair and shared by every
// machine in that city.
type Location struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	Country   string  `json:"country" gorm:"type:varchar(100);not null;uniqueIndex:idx_locations_country_city"`
	City      string  `json:"city" gorm:"type:varchar(100);not null;uniqueIndex:idx_locations_country_city"`
	Latitude  float64 `json:"latitude" gorm:"not null"`
	Longitude float64 `json:"longitude" gorm:"not null"`

	// Relationships
	Machines []Machine `json:"machines,omitempty" gorm:"foreignKey:LocationID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for the Location model
func (Location) TableName() string {
	return "locations"
}

// LocationDto is the location shape at the API boundary.
type LocationDto struct {
	Country   string  `json:"country" binding:"required"`
	City      string  `json:"city" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
