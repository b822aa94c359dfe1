package repos

import (
	"database/sql"

	"beststore/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(p domain.Product) (int64, error) {
	res, err := r.db.NamedExec(`
  INSERT INTO products(name, brand, category, description, price, image_file, created_at)
  VALUES(:name, :brand, :category, :description, :price, :image_file, :created_at)
`, p)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ProductRepo) Get(id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
  SELECT id, name, brand, category, description, price, image_file, created_at
  FROM products
  WHERE id = ?
`, id)
	return p, err
}

// List returns all products oldest-first, so the newest insertion lands last.
func (r *ProductRepo) List() ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
  SELECT id, name, brand, category, description, price, image_file, created_at
  FROM products
  ORDER BY id
`)
	return out, err
}

func (r *ProductRepo) Update(id int64, p domain.Product) error {
	res, err := r.db.Exec(`
  UPDATE products
  SET name = ?, brand = ?, category = ?, description = ?, price = ?, image_file = ?
  WHERE id = ?
`, p.Name, p.Brand, p.Category, p.Description, p.Price, p.ImageFile, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductRepo) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
