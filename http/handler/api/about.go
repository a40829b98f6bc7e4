package api

import (
	"net/http"
	"time"

	"github.com/ob1/scannerd/app"
	"github.com/ob1/scannerd/http/api"

	"github.com/labstack/echo/v4"
)

// The AboutHandler type provides handler functions for retrieving details
// about the API version and build infos.
type AboutHandler struct {
	id        string
	name      string
	scanner   string
	createdAt time.Time
}

// NewAbout returns a new About type. The scanner is the path to the
// ob1-scanner binary in use.
func NewAbout(id, name, scanner string, createdAt time.Time) *AboutHandler {
	return &AboutHandler{
		id:        id,
		name:      name,
		scanner:   scanner,
		createdAt: createdAt,
	}
}

// About returns API version and build infos
// @Summary API version and build infos
// @Description API version and build infos
// @ID about
// @Produce json
// @Success 200 {object} api.About
// @Security BasicAuth
// @Router /api/v1/about [get]
func (p *AboutHandler) About(c echo.Context) error {
	about := api.About{
		App:       app.Name,
		Name:      p.name,
		ID:        p.id,
		CreatedAt: p.createdAt.Format(time.RFC3339),
		Uptime:    uint64(time.Since(p.createdAt).Seconds()),
		Scanner:   p.scanner,
		Version: api.AboutVersion{
			Number:   app.Version.String(),
			Commit:   app.Commit,
			Branch:   app.Branch,
			Build:    app.Build,
			Arch:     app.Arch,
			Compiler: app.Compiler,
		},
	}

	return c.JSON(http.StatusOK, about)
}
