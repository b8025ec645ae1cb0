package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cv-creator/internal/apperr"
	"cv-creator/internal/domain"
	"cv-creator/internal/model"
	"cv-creator/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type Handler struct {
	sessions *usecase.Registry
}

func NewHandler(r *usecase.Registry) *Handler {
	return &Handler{sessions: r}
}

// Register mounts the session API on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	s := app.Group("/sessions")
	s.Post("/", h.OpenSession)
	s.Get("/:id", h.GetSession)
	s.Delete("/:id", h.CloseSession)

	s.Patch("/:id/fields", h.SetFields)
	s.Post("/:id/reset", h.Reset)
	s.Put("/:id/presentation", h.SetPresentation)
	s.Put("/:id/entries/:section/:index", h.PutEntry)
	s.Delete("/:id/entries/:section/:index", h.RemoveEntry)
	s.Post("/:id/entries/:section/move", h.MoveEntry)

	s.Post("/:id/photo", h.UploadPhoto)
	s.Delete("/:id/photo", h.ClearPhoto)
	s.Post("/:id/import", h.Import)

	s.Get("/:id/preview", h.Preview)
	s.Get("/:id/export/:format", h.Export)

	s.Get("/:id/versions", h.ListVersions)
	s.Post("/:id/versions", h.SaveVersion)
	s.Post("/:id/versions/:name/load", h.LoadVersion)
	s.Delete("/:id/versions/:name", h.DeleteVersion)

	s.Get("/:id/theme", h.Theme)
	s.Post("/:id/theme/toggle", h.ToggleTheme)
}

func status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrMalformedInput):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrRefused):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrPrecondition):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrEnvironment):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// reply attaches the notices the session produced during the request.
func (h *Handler) reply(c *fiber.Ctx, code int, body fiber.Map) error {
	body["notices"] = h.notices(c.Params("id"))
	return c.Status(code).JSON(body)
}

func (h *Handler) notices(id string) []usecase.Notice {
	ns := h.sessions.Notices(id)
	if ns == nil {
		ns = []usecase.Notice{}
	}
	return ns
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	code := status(err)
	if code == fiber.StatusInternalServerError {
		slog.Error("http: request failed", "path", c.Path(), "error", err)
	}
	return h.reply(c, code, fiber.Map{"error": err.Error()})
}

func (h *Handler) session(c *fiber.Ctx) (*usecase.Session, error) {
	return h.sessions.Get(c.Params("id"))
}

type openReq struct {
	ID string `json:"id"`
}

func (h *Handler) OpenSession(c *fiber.Ctx) error {
	var req openReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}
	}
	s, err := h.sessions.Open(c.UserContext(), req.ID)
	if err != nil {
		return c.Status(status(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": s.ID, "state": s.State()})
}

func (h *Handler) GetSession(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"id": s.ID, "state": s.State()})
}

func (h *Handler) CloseSession(c *fiber.Ctx) error {
	if err := h.sessions.Close(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(status(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) SetFields(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	var fields map[string]string
	if err := c.BodyParser(&fields); err != nil {
		return h.fail(c, fmt.Errorf("%w: fields must be an object of strings", apperr.ErrMalformedInput))
	}
	err = s.Edit(c.UserContext(), func(f *model.FormState) error {
		for id, v := range fields {
			if err := f.SetField(id, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"state": s.State()})
}

func (h *Handler) Reset(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	s.Reset(c.UserContext())
	return h.reply(c, fiber.StatusOK, fiber.Map{"state": s.State()})
}

type presentationReq struct {
	Template string `json:"template"`
	Color    string `json:"colorScheme"`
	Locale   string `json:"locale"`
}

func (h *Handler) SetPresentation(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req presentationReq
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, fmt.Errorf("%w: invalid payload", apperr.ErrMalformedInput))
	}
	ctx := c.UserContext()
	if req.Template != "" {
		t, err := domain.ParseTemplate(req.Template)
		if err != nil {
			return h.fail(c, err)
		}
		s.SetTemplate(ctx, t)
	}
	if req.Color != "" {
		col, err := domain.ParseColor(req.Color)
		if err != nil {
			return h.fail(c, err)
		}
		s.SetColor(ctx, col)
	}
	if req.Locale != "" {
		s.SetLocale(ctx, req.Locale)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"state": s.State()})
}

// putEntry decodes the body into the entry type of the section.
func putEntry(c *fiber.Ctx, section model.Section, i int) (func(f *model.FormState) error, error) {
	switch section {
	case model.SectionExperience:
		var e model.Experience
		if err := c.BodyParser(&e); err != nil {
			return nil, err
		}
		return func(f *model.FormState) error { return f.PutExperience(i, e) }, nil
	case model.SectionEducation:
		var e model.Education
		if err := c.BodyParser(&e); err != nil {
			return nil, err
		}
		return func(f *model.FormState) error { return f.PutEducation(i, e) }, nil
	case model.SectionLanguages:
		var l model.Language
		if err := c.BodyParser(&l); err != nil {
			return nil, err
		}
		l.Level = model.ParseLevel(string(l.Level))
		return func(f *model.FormState) error { return f.PutLanguage(i, l) }, nil
	case model.SectionProjects:
		var p model.Project
		if err := c.BodyParser(&p); err != nil {
			return nil, err
		}
		return func(f *model.FormState) error { return f.PutProject(i, p) }, nil
	case model.SectionCertificates:
		var ce model.Certificate
		if err := c.BodyParser(&ce); err != nil {
			return nil, err
		}
		return func(f *model.FormState) error { return f.PutCertificate(i, ce) }, nil
	}
	return nil, fmt.Errorf("unknown section %q", section)
}

func (h *Handler) PutEntry(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	i, err := c.ParamsInt("index")
	if err != nil {
		return h.fail(c, fmt.Errorf("%w: index must be a number", apperr.ErrMalformedInput))
	}
	edit, err := putEntry(c, model.Section(c.Params("section")), i)
	if err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", apperr.ErrMalformedInput, err))
	}
	if err := s.Edit(c.UserContext(), edit); err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"state": s.State()})
}

func (h *Handler) RemoveEntry(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	i, err := c.ParamsInt("index")
	if err != nil {
		return h.fail(c, fmt.Errorf("%w: index must be a number", apperr.ErrMalformedInput))
	}
	section := model.Section(c.Params("section"))
	if err := s.Edit(c.UserContext(), func(f *model.FormState) error { return f.Remove(section, i) }); err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"state": s.State()})
}

type moveReq struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (h *Handler) MoveEntry(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req moveReq
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, fmt.Errorf("%w: invalid payload", apperr.ErrMalformedInput))
	}
	section := model.Section(c.Params("section"))
	if err := s.Edit(c.UserContext(), func(f *model.FormState) error { return f.Move(section, req.From, req.To) }); err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"state": s.State()})
}

// upload returns the "file" form part, or the raw body for other content
// types.
func upload(c *fiber.Ctx) (data []byte, contentType string, err error) {
	fh, ferr := c.FormFile("file")
	if ferr != nil {
		return c.Body(), c.Get(fiber.HeaderContentType), nil
	}
	if fh.Size > model.MaxPhotoBytes*2 {
		return nil, "", fmt.Errorf("%w: upload is %d bytes", apperr.ErrRefused, fh.Size)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err = io.ReadAll(f)
	return data, fh.Header.Get(fiber.HeaderContentType), err
}

func (h *Handler) UploadPhoto(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, ct, err := upload(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := s.SetPhoto(c.UserContext(), ct, data); err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"state": s.State()})
}

func (h *Handler) ClearPhoto(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := s.ClearPhoto(c.UserContext()); err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"state": s.State()})
}

func (h *Handler) Import(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, _, err := upload(c)
	if err != nil {
		return h.fail(c, err)
	}
	prof, err := s.Import(c.UserContext(), data)
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"profile": prof, "state": s.State()})
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	pv, err := s.Preview(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(pv.HTML)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{
		"placeholder": pv.Document.Placeholder,
		"html":        string(pv.HTML),
		"progress":    pv.Progress,
	})
}

func (h *Handler) Export(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	f, err := usecase.ParseFormat(c.Params("format"))
	if err != nil {
		return h.fail(c, err)
	}
	a, err := s.Export(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	// binary response; the success notice is only logged
	h.sessions.Notices(s.ID)
	c.Set(fiber.HeaderContentType, a.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", a.Name))
	return c.Send(a.Data)
}

func (h *Handler) ListVersions(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	names, err := s.ListVersions(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"versions": names, "selected": s.State().Context.Version})
}

type saveReq struct {
	Name string `json:"name"`
}

func (h *Handler) SaveVersion(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req saveReq
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, fmt.Errorf("%w: invalid payload", apperr.ErrMalformedInput))
	}
	snap, err := s.SaveVersion(c.UserContext(), req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusCreated, fiber.Map{"snapshot": snap})
}

// LoadVersion needs ?confirm=true for named versions. Without it the
// response carries the confirmation prompt and nothing changes.
func (h *Handler) LoadVersion(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	confirmed := c.QueryBool("confirm")
	var prompt string
	loaded, err := s.LoadVersion(c.UserContext(), utils.CopyString(c.Params("name")), func(p string) bool {
		prompt = p
		return confirmed
	})
	if err != nil {
		return h.fail(c, err)
	}
	if !loaded {
		return h.reply(c, fiber.StatusConflict, fiber.Map{"loaded": false, "confirm": prompt})
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"loaded": true, "state": s.State()})
}

func (h *Handler) DeleteVersion(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := s.DeleteVersion(c.UserContext(), utils.CopyString(c.Params("name"))); err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"selected": s.State().Context.Version})
}

func (h *Handler) Theme(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	t, err := s.Theme(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"theme": t})
}

func (h *Handler) ToggleTheme(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	t, err := s.ToggleTheme(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, fiber.StatusOK, fiber.Map{"theme": t})
}
