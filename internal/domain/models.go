package domain

type Product struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Brand       string  `db:"brand"`
	Category    string  `db:"category"`
	Description string  `db:"description"`
	Price       float64 `db:"price"`
	ImageFile   string  `db:"image_file"`
	CreatedAt   string  `db:"created_at"`
}
