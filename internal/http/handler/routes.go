package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docforge/internal/artifact"
	"docforge/internal/convert"
	"docforge/internal/model"
	"docforge/internal/service"
	"docforge/internal/template"
)

// GenerationObserver records the duration of a generate request. A nil
// observer disables recording.
type GenerationObserver interface {
	ObserveGeneration(format string, d time.Duration)
}

// HealthCheck reports service health based on database connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadTemplate accepts a multipart upload (field name: file), stores the
// template, and responds with the stored template plus the discovered
// placeholders.
func UploadTemplate(svc service.TemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := svc.Upload(c.UserContext(), f, fh.Filename, fh.Size)
		if err != nil {
			switch {
			case errors.Is(err, template.ErrUnsupportedFormat):
				return writeError(c, fiber.StatusInternalServerError, "UNSUPPORTED_FORMAT", "template format is not supported")
			case errors.Is(err, template.ErrNoPlaceholders):
				return writeError(c, fiber.StatusInternalServerError, "NO_PLACEHOLDERS", "no placeholders found in template")
			case errors.Is(err, service.ErrUpload):
				return writeError(c, fiber.StatusInternalServerError, "UPLOAD_FAILED", "template archive upload failed")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// ListTemplates lists stored templates with limit and offset.
func ListTemplates(svc service.TemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetTemplate returns a stored template by ID.
func GetTemplate(svc service.TemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		tmpl, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "template not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(tmpl)
	}
}

// DeleteTemplate removes a stored template by ID.
func DeleteTemplate(svc service.TemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "template not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GenerateDocument fills the named template with the JSON body of
// placeholder values and responds with the generated artifacts.
func GenerateDocument(svc service.GenerateService, obs GenerationObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil || name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "template name is required")
		}

		data := model.FormData{}
		if body := c.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &data); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
			}
		}

		start := time.Now()
		artifacts, err := svc.Generate(c.UserContext(), name, data)
		if err != nil {
			var convErr *convert.ConversionError
			switch {
			case errors.Is(err, service.ErrNameRequired):
				return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "template name is required")
			case errors.Is(err, service.ErrTemplateMissing):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "template not found")
			case errors.As(err, &convErr):
				return writeError(c, fiber.StatusInternalServerError, "CONVERSION_FAILED", "pdf conversion failed")
			default:
				return writeError(c, fiber.StatusInternalServerError, "GENERATION_FAILED", "document generation failed")
			}
		}
		if obs != nil && len(artifacts) > 0 {
			obs.ObserveGeneration(string(artifacts[0].Type), time.Since(start))
		}

		return c.JSON(fiber.Map{"files": artifacts})
	}
}

// DownloadArtifact streams a generated artifact identified by its type tag
// and filename path segments.
func DownloadArtifact(store *artifact.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		typeTag := c.Params("type")
		filename, err := url.PathUnescape(c.Params("filename"))
		if err != nil || filename == "" {
			return writeError(c, fiber.StatusBadRequest, "FILENAME_REQUIRED", "filename is required")
		}

		a, err := store.Resolve(typeTag, filename)
		if err != nil {
			switch {
			case errors.Is(err, artifact.ErrInvalidType):
				return writeError(c, fiber.StatusBadRequest, "INVALID_TYPE", "unknown artifact type")
			case errors.Is(err, artifact.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "artifact not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		f, err := store.Open(a)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentType, a.Type.ContentType())
		c.Set(fiber.HeaderContentLength, strconv.FormatInt(a.Size, 10))
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+url.PathEscape(a.Filename)+`"`)
		return c.SendStream(f, int(a.Size))
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, tmplSvc service.TemplateService, genSvc service.GenerateService, store *artifact.Store, obs GenerationObserver) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/templates", UploadTemplate(tmplSvc))
	app.Get("/templates", ListTemplates(tmplSvc))
	app.Get("/templates/:id", GetTemplate(tmplSvc))
	app.Delete("/templates/:id", DeleteTemplate(tmplSvc))

	app.Post("/templates/:name/generate", GenerateDocument(genSvc, obs))

	app.Get("/download/:type/:filename", DownloadArtifact(store))
}
