package handlers

import (
	"errors"
	"io"

	applog "beststore/internal/log"
	"beststore/internal/services"
	"beststore/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /products
func (h *ProductHandler) Index(c *fiber.Ctx) error {
	products, err := h.Catalog.ListProducts()
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	return render(c, "products_index", fiber.Map{"Products": products})
}

// GET /products/create
func (h *ProductHandler) CreateForm(c *fiber.Ctx) error {
	return render(c, "product_create", fiber.Map{"F": services.ProductFields{}})
}

// POST /products/create
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	fields, ok := productFields(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"form": "product_create"})
		c.Status(400)
		return render(c, "product_create", fiber.Map{"Err": "All fields are required and price must not be negative", "F": fields})
	}
	content, name, err := imageUpload(c)
	if err != nil {
		applog.Error(c, "products.create.upload.fail", err, nil)
		c.Status(400)
		return render(c, "product_create", fiber.Map{"Err": "Could not read the image file", "F": fields})
	}

	id, err := h.Catalog.CreateProduct(fields, content, name)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			c.Status(400)
			return render(c, "product_create", fiber.Map{"Err": verr.Error(), "F": fields})
		}
		applog.Error(c, "products.create.fail", err, map[string]any{"name": fields.Name})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not create the product"})
	}

	applog.Audit(c, "products.create", map[string]any{"id": id})
	return c.Redirect("/products")
}

// GET /products/edit?id=
func (h *ProductHandler) EditForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	p, err := h.Catalog.GetProductForEdit(id)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			applog.Error(c, "products.edit.load.fail", err, map[string]any{"id": id})
		}
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	return render(c, "product_edit", fiber.Map{"P": p})
}

// POST /products/edit?id=
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	fields, okF := productFields(c)
	if !okF {
		applog.Security(c, "validation.fail", map[string]any{"form": "product_edit", "id": id})
		return c.Status(400).SendString("invalid input")
	}
	content, name, err := imageUpload(c)
	if err != nil {
		applog.Error(c, "products.update.upload.fail", err, map[string]any{"id": id})
		return c.Status(400).SendString("could not read the image file")
	}

	if err := h.Catalog.UpdateProduct(id, fields, content, name); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
		}
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(400).SendString(verr.Error())
		}
		applog.Error(c, "products.update.fail", err, map[string]any{"id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not update the product"})
	}

	applog.Audit(c, "products.update", map[string]any{"id": id, "image_swapped": len(content) > 0})
	return c.Redirect("/products")
}

// POST /products/delete?id=
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	if err := h.Catalog.DeleteProduct(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
		}
		applog.Error(c, "products.delete.fail", err, map[string]any{"id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not delete the product"})
	}
	applog.Audit(c, "products.delete", map[string]any{"id": id})
	return c.Redirect("/products")
}

// productFields reads and validates the shared create/edit form fields.
func productFields(c *fiber.Ctx) (services.ProductFields, bool) {
	name, okN := validate.Name(c.FormValue("name"))
	brand, okB := validate.Name(c.FormValue("brand"))
	category, okC := validate.Name(c.FormValue("category"))
	desc, okD := validate.Text(c.FormValue("description"))
	price, okP := validate.Price(c.FormValue("price"))

	f := services.ProductFields{Name: name, Brand: brand, Category: category, Description: desc, Price: price}
	return f, okN && okB && okC && okD && okP
}

// imageUpload reads the optional multipart image. A missing file part is not
// an error here; the service decides whether an image is required.
func imageUpload(c *fiber.Ctx) ([]byte, string, error) {
	fh, err := c.FormFile("imageFile")
	if err != nil || fh == nil {
		return nil, "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return content, fh.Filename, nil
}
