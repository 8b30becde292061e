package models

// Category defines the struct for the 'categories' lookup table.
// ProductCount is derived: active products whose category is this slug.
type Category struct {
	Slug         string  `json:"slug" db:"slug"`
	Name         string  `json:"name" db:"name"`
	NamePlural   *string `json:"name_plural" db:"name_plural"`
	Icon         *string `json:"icon" db:"icon"`
	IsFeatured   bool    `json:"is_featured" db:"is_featured"`
	SortOrder    int32   `json:"sort_order" db:"sort_order"`
	ProductCount int32   `json:"product_count" db:"-"`
}
