package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cv-creator/internal/adapter/repository"
	"cv-creator/internal/domain"
	"cv-creator/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	reg := usecase.NewRegistry(usecase.NewProcessor(nil), repository.NewMemoryBlobs(), usecase.RegistryConfig{
		Defaults: domain.NewSessionContext(domain.TemplateClassic, domain.ColorBlue, "en-US"),
		Debounce: time.Hour,
		Interval: time.Hour,
	})
	app := fiber.New()
	NewHandler(reg).Register(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func openSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, out := do(t, app, http.MethodPost, "/sessions/", "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("open status = %d", resp.StatusCode)
	}
	return out["id"].(string)
}

func fill(t *testing.T, app *fiber.App, id string) {
	t.Helper()
	resp, _ := do(t, app, http.MethodPatch, "/sessions/"+id+"/fields",
		`{"firstName":"Ana","lastName":"Popescu","email":"a@x.com","phone":"0712345678","skills":"Go, , Rust ,"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("fields status = %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodPut, "/sessions/"+id+"/entries/experience/0",
		`{"position":"Engineer","company":"Acme","start":"2020-01","current":true}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("entry status = %d", resp.StatusCode)
	}
}

func TestUnknownSession(t *testing.T) {
	app := testApp(t)
	resp, _ := do(t, app, http.MethodGet, "/sessions/nope/preview", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestPreviewAndExport(t *testing.T) {
	app := testApp(t)
	id := openSession(t, app)

	resp, out := do(t, app, http.MethodGet, "/sessions/"+id+"/preview", "")
	if resp.StatusCode != fiber.StatusOK || out["placeholder"] != true {
		t.Fatalf("preview = %d %v", resp.StatusCode, out)
	}
	resp, out = do(t, app, http.MethodGet, "/sessions/"+id+"/export/markdown", "")
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ns := out["notices"].([]any); len(ns) != 1 {
		t.Fatalf("notices = %v", ns)
	}

	fill(t, app, id)
	resp, out = do(t, app, http.MethodGet, "/sessions/"+id+"/preview", "")
	if out["placeholder"] != false || !strings.Contains(out["html"].(string), "Ana Popescu") {
		t.Fatalf("preview = %v", out)
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/export/md", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || !strings.HasPrefix(string(body), "# Ana Popescu") {
		t.Fatalf("export = %d %s", resp.StatusCode, body)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); !strings.Contains(cd, "Ana_Popescu.md") {
		t.Fatalf("disposition = %q", cd)
	}

	resp, _ = do(t, app, http.MethodGet, "/sessions/"+id+"/export/pdf", "")
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("pdf without renderer = %d", resp.StatusCode)
	}
}

func TestRemoveLastEntryRefused(t *testing.T) {
	app := testApp(t)
	id := openSession(t, app)
	resp, _ := do(t, app, http.MethodDelete, "/sessions/"+id+"/entries/projects/0", "")
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodPatch, "/sessions/"+id+"/fields", `{"nickname":"x"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("unknown field status = %d", resp.StatusCode)
	}
}

func TestVersionRoutes(t *testing.T) {
	app := testApp(t)
	id := openSession(t, app)
	fill(t, app, id)

	resp, _ := do(t, app, http.MethodPost, "/sessions/"+id+"/versions", `{"name":"Draft1"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("save status = %d", resp.StatusCode)
	}
	_, out := do(t, app, http.MethodGet, "/sessions/"+id+"/versions", "")
	if vs := out["versions"].([]any); len(vs) != 1 || vs[0] != "Draft1" || out["selected"] != "Draft1" {
		t.Fatalf("versions = %v", out)
	}

	resp, out = do(t, app, http.MethodPost, "/sessions/"+id+"/versions/Draft1/load", "")
	if resp.StatusCode != fiber.StatusConflict || out["loaded"] != false || out["confirm"] == "" {
		t.Fatalf("unconfirmed load = %d %v", resp.StatusCode, out)
	}
	resp, out = do(t, app, http.MethodPost, "/sessions/"+id+"/versions/Draft1/load?confirm=true", "")
	if resp.StatusCode != fiber.StatusOK || out["loaded"] != true {
		t.Fatalf("confirmed load = %d %v", resp.StatusCode, out)
	}

	resp, _ = do(t, app, http.MethodDelete, "/sessions/"+id+"/versions/current", "")
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("delete current = %d", resp.StatusCode)
	}
	resp, out = do(t, app, http.MethodDelete, "/sessions/"+id+"/versions/Draft1", "")
	if resp.StatusCode != fiber.StatusOK || out["selected"] != "current" {
		t.Fatalf("delete = %d %v", resp.StatusCode, out)
	}
	resp, _ = do(t, app, http.MethodPost, "/sessions/"+id+"/versions/Draft1/load?confirm=true", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("load deleted = %d", resp.StatusCode)
	}
}

func TestImportAndPhotoUpload(t *testing.T) {
	app := testApp(t)
	id := openSession(t, app)

	resp, out := do(t, app, http.MethodPost, "/sessions/"+id+"/import", `{"firstName":"Ana","skills":["Go"]}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("import = %d %v", resp.StatusCode, out)
	}
	resp, _ = do(t, app, http.MethodPost, "/sessions/"+id+"/import", `{"firstName":`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("malformed import = %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "me.png")
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/photo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("photo = %d", resp.StatusCode)
	}
}

func TestThemeToggle(t *testing.T) {
	app := testApp(t)
	id := openSession(t, app)
	_, out := do(t, app, http.MethodGet, "/sessions/"+id+"/theme", "")
	if out["theme"] != "light" {
		t.Fatalf("theme = %v", out)
	}
	_, out = do(t, app, http.MethodPost, "/sessions/"+id+"/theme/toggle", "")
	if out["theme"] != "dark" {
		t.Fatalf("toggled = %v", out)
	}
}

func TestLoadedVersionSurvivesLaterRequests(t *testing.T) {
	app := testApp(t)
	id := openSession(t, app)
	fill(t, app, id)

	if resp, _ := do(t, app, http.MethodPost, "/sessions/"+id+"/versions", `{"name":"Draft1"}`); resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("save status = %d", resp.StatusCode)
	}
	if resp, _ := do(t, app, http.MethodPost, "/sessions/"+id+"/versions/Draft1/load?confirm=true", ""); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("load status = %d", resp.StatusCode)
	}
	for i := 0; i < 5; i++ {
		resp, _ := do(t, app, http.MethodPost, "/sessions/"+id+"/versions/ZZZZZZ/load?confirm=true", "")
		if resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("missing load = %d", resp.StatusCode)
		}
	}
	_, out := do(t, app, http.MethodGet, "/sessions/"+id+"/versions", "")
	if out["selected"] != "Draft1" {
		t.Fatalf("selected = %v, want Draft1", out["selected"])
	}
}
