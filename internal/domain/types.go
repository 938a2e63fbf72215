package domain

import "time"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is what the location picker hands back: coordinates, a readable
// address and a rendered map preview.
type Location struct {
	Coordinates
	Address           string `json:"address"`
	StaticMapImageURL string `json:"staticMapImageUrl,omitempty"`
}

type Place struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"imageUrl"`
	Price         float64   `json:"price"`
	AvailableFrom time.Time `json:"availableFrom"`
	AvailableTo   time.Time `json:"availableTo"`
	UserID        string    `json:"userId"`
	Location      *Location `json:"location,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewPlace carries the values of a submitted creation form.
type NewPlace struct {
	Title       string
	Description string
	Price       float64
	DateFrom    time.Time
	DateTo      time.Time
	Location    *Location
	ImageURL    string
}

// PlaceUpdate carries the editable fields of an existing place. Image and
// location cannot be changed after creation.
type PlaceUpdate struct {
	Title       string
	Description string
	Price       float64
	DateFrom    time.Time
	DateTo      time.Time
}

type UploadResult struct {
	ImageURL     string `json:"imageUrl"`
	ImagePath    string `json:"imagePath"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}
