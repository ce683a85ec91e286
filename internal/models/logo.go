package models

import "time"

// Logo is an uploaded image products point at. FilePath is the served path
// or URL of the stored file.
type Logo struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	FilePath  string    `db:"file_path" json:"filePath"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
