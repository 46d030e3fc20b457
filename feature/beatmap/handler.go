package beatmap

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"beatmap-manager/core/logger"
)

// Handler handles HTTP requests for beatmap resolution.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the beatmap routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	maps := app.Group("/maps")
	maps.Get("/md5/:md5", h.HandleGetByMD5)
	maps.Get("/:id", h.HandleGetByID)
	maps.Patch("/:id/status", h.HandleSetStatus)

	sets := app.Group("/mapsets")
	sets.Get("/:id", h.HandleGetSet)
	sets.Post("/", h.HandleCreateSet)
}

// MapResponse is the JSON view of a resolved beatmap.
type MapResponse struct {
	MD5         string    `json:"md5"`
	ID          int       `json:"id"`
	SetID       int       `json:"set_id"`
	Artist      string    `json:"artist"`
	Title       string    `json:"title"`
	Version     string    `json:"version"`
	Creator     string    `json:"creator"`
	Filename    string    `json:"filename"`
	LastUpdate  time.Time `json:"last_update"`
	TotalLength int       `json:"total_length"`
	MaxCombo    int       `json:"max_combo"`
	Status      int       `json:"status"`
	StatusLabel string    `json:"status_label"`
	Frozen      bool      `json:"frozen"`
	Plays       int       `json:"plays"`
	Passes      int       `json:"passes"`
	Mode        int       `json:"mode"`
	BPM         float64   `json:"bpm"`
	CS          float64   `json:"cs"`
	OD          float64   `json:"od"`
	AR          float64   `json:"ar"`
	HP          float64   `json:"hp"`
	Diff        float64   `json:"diff"`
	Server      string    `json:"server"`
	FullName    string    `json:"full_name"`
	URL         string    `json:"url"`
	Leaderboard bool      `json:"has_leaderboard"`
}

// SetResponse is the JSON view of a resolved beatmap set.
type SetResponse struct {
	ID           int           `json:"id"`
	LastAPICheck time.Time     `json:"last_api_check"`
	URL          string        `json:"url"`
	Maps         []MapResponse `json:"maps"`
}

func (h *Handler) mapResponse(b *Beatmap) MapResponse {
	return MapResponse{
		MD5:         b.MD5,
		ID:          b.ID,
		SetID:       b.SetID,
		Artist:      b.Artist,
		Title:       b.Title,
		Version:     b.Version,
		Creator:     b.Creator,
		Filename:    b.Filename,
		LastUpdate:  b.LastUpdate,
		TotalLength: b.TotalLength,
		MaxCombo:    b.MaxCombo,
		Status:      int(b.Status),
		StatusLabel: b.Status.String(),
		Frozen:      b.Frozen,
		Plays:       b.Plays,
		Passes:      b.Passes,
		Mode:        b.Mode,
		BPM:         b.BPM,
		CS:          b.CS,
		OD:          b.OD,
		AR:          b.AR,
		HP:          b.HP,
		Diff:        b.Diff,
		Server:      string(b.Server),
		FullName:    b.FullName(),
		URL:         b.URL(h.service.Domain()),
		Leaderboard: b.HasLeaderboard(),
	}
}

func (h *Handler) setResponse(s *BeatmapSet) SetResponse {
	resp := SetResponse{
		ID:           s.ID,
		LastAPICheck: s.LastAPICheck,
		URL:          s.URL(h.service.Domain()),
		Maps:         make([]MapResponse, 0, len(s.Maps)),
	}
	for _, b := range s.Maps {
		resp.Maps = append(resp.Maps, h.mapResponse(b))
	}
	return resp
}

// HandleGetByMD5 resolves a beatmap by its checksum.
func (h *Handler) HandleGetByMD5(c *fiber.Ctx) error {
	md5 := c.Params("md5")
	knownSetID := c.QueryInt("set_id", -1)
	l := logger.WithRayID(h.service.logger, c)

	b, err := h.service.ResolveByMD5(c.Context(), md5, knownSetID)
	if err != nil {
		l.Error("md5 resolution failed", zap.String("md5", md5), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if b == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "beatmap not found",
		})
	}

	return c.JSON(h.mapResponse(b))
}

// HandleGetByID resolves a beatmap by its id.
func (h *Handler) HandleGetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid beatmap id",
		})
	}
	l := logger.WithRayID(h.service.logger, c)

	b, err := h.service.ResolveByID(c.Context(), id)
	if err != nil {
		l.Error("id resolution failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if b == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "beatmap not found",
		})
	}

	return c.JSON(h.mapResponse(b))
}

// HandleGetSet resolves a whole beatmap set by id.
func (h *Handler) HandleGetSet(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid set id",
		})
	}
	l := logger.WithRayID(h.service.logger, c)

	set, err := h.service.ResolveSet(c.Context(), id)
	if err != nil {
		l.Error("set resolution failed", zap.Int("set_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if set == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "beatmapset not found",
		})
	}

	return c.JSON(h.setResponse(set))
}

// statusRequest is the body for a manual status override.
type statusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus applies a manual ranked-status override to a map.
// The map's status is frozen afterwards.
func (h *Handler) HandleSetStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid beatmap id",
		})
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.SetStatus(c.Context(), id, StatusFromLabel(req.Status)); err != nil {
		l.Error("status override failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// createSetRequest is the body for a new private submission.
type createSetRequest struct {
	Creator  string `json:"creator"`
	MapCount int    `json:"map_count"`
}

// HandleCreateSet allocates a new privately-submitted beatmap set.
func (h *Handler) HandleCreateSet(c *fiber.Ctx) error {
	var req createSetRequest
	if err := c.BodyParser(&req); err != nil || req.Creator == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	l := logger.WithRayID(h.service.logger, c)

	set, err := h.service.CreateBeatmapset(c.Context(), req.Creator, req.MapCount)
	if err != nil {
		l.Error("submission failed", zap.String("creator", req.Creator), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(h.setResponse(set))
}
