package preset

import (
	"time"

	"github.com/google/uuid"
)

// ProductType is the physical product family a preset belongs to
type ProductType string

const (
	ProductPhotobook ProductType = "photobook"
	ProductCanvas    ProductType = "canvas"
	ProductCalendar  ProductType = "calendar"
	ProductMug       ProductType = "mug"
	ProductPhoto     ProductType = "photo"
	ProductOther     ProductType = "other"
)

// Preset defines the physical parameters of a product variant: page
// dimensions in centimeters, print resolution and the page cap. Projects
// copy these values at creation time.
type Preset struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	ProductType     ProductType `db:"product_type" json:"product_type"`
	WidthCm         float64     `db:"width_cm" json:"width_cm"`
	HeightCm        float64     `db:"height_cm" json:"height_cm"`
	DPI             float64     `db:"dpi" json:"dpi"`
	PageCount       int         `db:"page_count" json:"page_count"` // cap, 0 = unlimited
	BackgroundColor string      `db:"background_color" json:"background_color"`
	SortOrder       int         `db:"sort_order" json:"sort_order"`
	Active          bool        `db:"active" json:"active"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}
