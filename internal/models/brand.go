package models

// Brand is created lazily the first time a product references its name.
type Brand struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
