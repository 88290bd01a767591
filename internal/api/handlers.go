package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"plantmap/internal/dashboard"
	"plantmap/internal/engine"
	"plantmap/internal/models"
)

// Renderer builds dashboard views. *dashboard.Service satisfies it.
type Renderer interface {
	Render(ctx context.Context, choices map[models.Column]string) (*dashboard.View, error)
	Filtered(ctx context.Context, choices map[models.Column]string) (*engine.ColumnStore, []models.FilterOption, error)
	Reference() dashboard.ReferenceView
	AssetPath(name string) (string, bool)
	MapOptions() engine.MapOptions
	SourceName() string
}

type Handler struct {
	svc Renderer
}

func NewHandler(svc Renderer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetDashboard)
	e.GET("/health", h.GetHealth)
	e.GET("/map.png", h.GetMapImage)
	e.GET("/export.xlsx", h.GetExport)
	e.GET(dashboard.AssetPrefix+":name", h.GetAsset)

	api := e.Group("/api")
	api.GET("/filters", h.GetFilters)
	api.GET("/summary", h.GetSummary)
	api.GET("/map", h.GetMap)
	api.GET("/plants", h.GetPlants)
	api.GET("/glossary", h.GetGlossary)
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func choices(c echo.Context) map[models.Column]string {
	return dashboard.ChoicesFromQuery(c.QueryParams())
}

// loadFailure maps a dataset error to a status and user-visible message.
func (h *Handler) loadFailure(err error) (int, string) {
	if eris.Is(err, engine.ErrDataNotFound) {
		return http.StatusServiceUnavailable, "Data file not found: " + h.svc.SourceName()
	}
	zap.L().Error("api: dataset load failed", zap.Error(err))
	return http.StatusInternalServerError, "The dataset could not be loaded."
}

func (h *Handler) loadError(err error) error {
	status, msg := h.loadFailure(err)
	return echo.NewHTTPError(status, msg).SetInternal(err)
}

func (h *Handler) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// the full page
func (h *Handler) GetDashboard(c echo.Context) error {
	view, err := h.svc.Render(c.Request().Context(), choices(c))
	if err != nil {
		status, msg := h.loadFailure(err)
		return c.Render(status, "error", map[string]string{"Title": dashboard.Title, "Message": msg})
	}
	return c.Render(http.StatusOK, "index", view)
}

func (h *Handler) GetFilters(c echo.Context) error {
	_, opts, err := h.svc.Filtered(c.Request().Context(), choices(c))
	if err != nil {
		return h.loadError(err)
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) GetSummary(c echo.Context) error {
	cs, _, err := h.svc.Filtered(c.Request().Context(), choices(c))
	if err != nil {
		return h.loadError(err)
	}
	sum := cs.Summarize()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"summary":    sum,
		"metrics":    dashboard.Metrics(sum),
		"by_status":  cs.Breakdown(models.ColStatus, 0),
		"by_country": cs.Breakdown(models.ColCountry, 0),
	})
}

func (h *Handler) GetMap(c echo.Context) error {
	cs, _, err := h.svc.Filtered(c.Request().Context(), choices(c))
	if err != nil {
		return h.loadError(err)
	}
	m, ok := engine.RenderMap(cs, h.svc.MapOptions())
	if !ok {
		return c.JSON(http.StatusOK, map[string]interface{}{"map": nil, "notice": engine.NoMatchNotice})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"map": m})
}

func (h *Handler) GetMapImage(c echo.Context) error {
	cs, _, err := h.svc.Filtered(c.Request().Context(), choices(c))
	if err != nil {
		return h.loadError(err)
	}
	m, ok := engine.RenderMap(cs, h.svc.MapOptions())
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	var buf bytes.Buffer
	if err := engine.DrawMap(&buf, m, 12*vg.Inch, 6*vg.Inch); err != nil {
		zap.L().Error("api: map image failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "map image could not be drawn").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// filtered units, paginated
func (h *Handler) GetPlants(c echo.Context) error {
	cs, _, err := h.svc.Filtered(c.Request().Context(), choices(c))
	if err != nil {
		return h.loadError(err)
	}
	if missing := engine.MissingDisplayColumns(cs); len(missing) > 0 {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"data":    []models.PlantUnit{},
			"total":   cs.Len(),
			"warning": engine.MissingColumnsWarning(missing),
		})
	}

	units := cs.Units
	total := len(units)
	limit, offset := getPaginationParams(c, total)

	if offset >= total {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"data":   []models.PlantUnit{},
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   units[offset:end],
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetGlossary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Reference())
}

func (h *Handler) GetExport(c echo.Context) error {
	cs, _, err := h.svc.Filtered(c.Request().Context(), choices(c))
	if err != nil {
		return h.loadError(err)
	}
	var buf bytes.Buffer
	if err := engine.ExportXLSX(&buf, cs); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="plants.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) GetAsset(c echo.Context) error {
	path, ok := h.svc.AssetPath(c.Param("name"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "asset not found")
	}
	return c.File(path)
}
