package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"beststore/internal/http/handlers"
	"beststore/internal/media"
	"beststore/internal/repos"
)

// Minimal app setup mirroring the production wiring.
func newApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	store := media.NewStore(dir)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Server().MaxRequestBodySize = 5 << 20
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	deps := handlers.NewDeps(db, store)
	app.Get("/products", deps.ProductHandler.Index)
	app.Get("/products/create", deps.ProductHandler.CreateForm)
	app.Post("/products/create", deps.ProductHandler.Create)
	app.Get("/products/edit", deps.ProductHandler.EditForm)
	app.Post("/products/edit", deps.ProductHandler.Update)
	app.Post("/products/delete", deps.ProductHandler.Delete)

	return app, dir
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/products/create", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func productForm(t *testing.T, csrfTok, name, price, imageName string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"csrf":        csrfTok,
		"name":        name,
		"brand":       "Acme",
		"category":    "Gadgets",
		"description": "A useful widget",
		"price":       price,
	} {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if imageName != "" {
		fw, err := w.CreateFormFile("imageFile", imageName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(image); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func postForm(t *testing.T, app *fiber.App, url, csrfTok string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", url, body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func listBody(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/products", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list expected 200, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func TestProductCrudFlow(t *testing.T) {
	app, dir := newApp(t)
	tok := csrfToken(t, app)

	// Create
	body, ct := productForm(t, tok, "Widget", "9.99", "photo.png", []byte("0123456789"))
	resp := postForm(t, app, "/products/create", tok, body, ct)
	if resp.StatusCode != http.StatusFound {
		rb, _ := io.ReadAll(resp.Body)
		t.Fatalf("create expected 302, got %d body=%s", resp.StatusCode, rb)
	}

	page := listBody(t, app)
	if !strings.Contains(page, "Widget") || !strings.Contains(page, "_photo.png") {
		t.Fatalf("list page missing created product: %s", page)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("want exactly one stored image, got %v entries err=%v", len(entries), err)
	}

	// Update with a replacement image
	body, ct = productForm(t, tok, "Widget v2", "19.99", "b.png", []byte("new-bytes"))
	resp = postForm(t, app, "/products/edit?id=1", tok, body, ct)
	if resp.StatusCode != http.StatusFound {
		rb, _ := io.ReadAll(resp.Body)
		t.Fatalf("update expected 302, got %d body=%s", resp.StatusCode, rb)
	}

	page = listBody(t, app)
	if !strings.Contains(page, "Widget v2") || !strings.Contains(page, "_b.png") {
		t.Fatalf("list page missing updated product: %s", page)
	}
	if strings.Contains(page, "_photo.png") {
		t.Fatal("old image reference still rendered after swap")
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("old image should be deleted on swap, got %d entries", len(entries))
	}

	// Delete
	var del bytes.Buffer
	w := multipart.NewWriter(&del)
	_ = w.WriteField("csrf", tok)
	_ = w.Close()
	resp = postForm(t, app, "/products/delete?id=1", tok, &del, w.FormDataContentType())
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("delete expected 302, got %d", resp.StatusCode)
	}

	page = listBody(t, app)
	if strings.Contains(page, "Widget") {
		t.Fatal("deleted product still listed")
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("image should be gone after delete, got %d entries", len(entries))
	}
}

func TestCreateProductWithoutImage(t *testing.T) {
	app, dir := newApp(t)
	tok := csrfToken(t, app)

	body, ct := productForm(t, tok, "Widget", "9.99", "", nil)
	resp := postForm(t, app, "/products/create", tok, body, ct)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("create without image expected 400, got %d", resp.StatusCode)
	}

	if page := listBody(t, app); strings.Contains(page, "Widget") {
		t.Fatal("no record should be created")
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) != 0 {
		t.Fatal("no file should be stored")
	}
}

func TestEditMissingProduct(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/products/edit?id=99", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing product expected 404, got %d", resp.StatusCode)
	}
}
