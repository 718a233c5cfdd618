package handlers

import (
	"io"
	"net/http"
	"strconv"

	"luckydraw/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// HTTPHandler holds the dependencies for the HTTP handlers, like the lottery service.
type HTTPHandler struct {
	service   *services.LotteryService
	hub       *Hub
	maxUpload int64
}

// NewHTTPHandler creates a new HTTPHandler. maxUpload caps the size of an
// uploaded participant file in bytes.
func NewHTTPHandler(service *services.LotteryService, hub *Hub, maxUpload int64) *HTTPHandler {
	return &HTTPHandler{
		service:   service,
		hub:       hub,
		maxUpload: maxUpload,
	}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	router.POST("/participants/preview", h.PreviewParticipants)
	router.POST("/participants", h.UploadParticipants)
	router.GET("/participants", h.ListParticipants)
	router.DELETE("/participants", h.ResetAll)

	router.GET("/settings", h.GetSettings)
	router.PUT("/settings", h.UpdateSettings)

	router.GET("/draw", h.GetDraw)
	router.POST("/draw/start", h.StartDraw)
	router.POST("/draw/stop", h.StopDraw)
	router.POST("/draw/reset", h.ResetDraw)
	router.PUT("/draw/mode", h.SetDrawMode)
	router.GET("/draw/events", h.StreamEvents)

	router.GET("/winners", h.ListWinners)
	router.DELETE("/winners", h.ClearWinners)
	router.DELETE("/winners/:n", h.RemoveWinner)
	router.GET("/winners/export", h.ExportWinnersCSV)

	router.GET("/reveal", h.RevealFrames)
}

// fail logs err and answers with a 500.
func fail(c *gin.Context, action string, err error) {
	logger.Errorf("Error %s: %v", action, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// Health reports that the server is up.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// openUpload returns the multipart "file" field, enforcing the size cap.
func (h *HTTPHandler) openUpload(c *gin.Context) (io.ReadCloser, string, bool) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving file: " + err.Error()})
		return nil, "", false
	}
	return file, header.Filename, true
}

// PreviewParticipants validates an upload and returns the result without
// saving it.
func (h *HTTPHandler) PreviewParticipants(c *gin.Context) {
	file, name, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	c.JSON(http.StatusOK, h.service.PreviewParticipants(name, file))
}

// UploadParticipants validates an upload and saves its valid rows.
func (h *HTTPHandler) UploadParticipants(c *gin.Context) {
	file, name, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.service.ImportParticipants(c.Request.Context(), name, file)
	if err != nil {
		fail(c, "saving participants", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListParticipants returns the saved participants, filtered by ?q=.
func (h *HTTPHandler) ListParticipants(c *gin.Context) {
	list, err := h.service.GetParticipants(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, "loading participants", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ResetAll clears participants and winners together.
func (h *HTTPHandler) ResetAll(c *gin.Context) {
	if err := h.service.Engine().ResetAll(c.Request.Context()); err != nil {
		fail(c, "resetting data", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSettings returns the stored settings.
func (h *HTTPHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		fail(c, "loading settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type settingsRequest struct {
	AllowRepeatWinners *bool `json:"allowRepeatWinners"`
}

// UpdateSettings saves the repeat-winner setting.
func (h *HTTPHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AllowRepeatWinners == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "allowRepeatWinners is required"})
		return
	}
	ctx := c.Request.Context()
	if err := h.service.Engine().SetAllowRepeat(ctx, *req.AllowRepeatWinners); err != nil {
		fail(c, "saving settings", err)
		return
	}
	h.GetSettings(c)
}

// GetDraw returns the current draw snapshot.
func (h *HTTPHandler) GetDraw(c *gin.Context) {
	snap, err := h.service.Engine().Snapshot(c.Request.Context())
	if err != nil {
		fail(c, "loading draw state", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// StartDraw begins spinning. Starting while a draw runs is a no-op.
func (h *HTTPHandler) StartDraw(c *gin.Context) {
	if err := h.service.Engine().Start(c.Request.Context()); err != nil {
		fail(c, "starting draw", err)
		return
	}
	h.GetDraw(c)
}

// StopDraw begins the slowdown.
func (h *HTTPHandler) StopDraw(c *gin.Context) {
	if err := h.service.Engine().Stop(c.Request.Context()); err != nil {
		fail(c, "stopping draw", err)
		return
	}
	h.GetDraw(c)
}

// ResetDraw abandons the draw in progress without recording a winner.
func (h *HTTPHandler) ResetDraw(c *gin.Context) {
	h.service.Engine().Reset()
	h.GetDraw(c)
}

type modeRequest struct {
	FirstPrize *bool `json:"firstPrize"`
}

// SetDrawMode toggles first-prize mode.
func (h *HTTPHandler) SetDrawMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FirstPrize == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "firstPrize is required"})
		return
	}
	h.service.Engine().SetFirstPrizeMode(*req.FirstPrize)
	h.GetDraw(c)
}

// StreamEvents pushes engine events to the client as server-sent events,
// starting with the current state.
func (h *HTTPHandler) StreamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	snap, err := h.service.Engine().Snapshot(ctx)
	if err != nil {
		fail(c, "loading draw state", err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.SSEvent(string(services.EventState), services.Event{Type: services.EventState, Snapshot: snap})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		}
	})
}

// ListWinners returns the winner list, most recent first.
func (h *HTTPHandler) ListWinners(c *gin.Context) {
	winners, err := h.service.GetWinners(c.Request.Context())
	if err != nil {
		fail(c, "loading winners", err)
		return
	}
	c.JSON(http.StatusOK, winners)
}

// ClearWinners drops the winner history.
func (h *HTTPHandler) ClearWinners(c *gin.Context) {
	if err := h.service.Engine().ClearWinners(c.Request.Context()); err != nil {
		fail(c, "clearing winners", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveWinner deletes one winner record, identified by N and ?pickedAt=.
func (h *HTTPHandler) RemoveWinner(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid N"})
		return
	}
	pickedAt := c.Query("pickedAt")
	if pickedAt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pickedAt is required"})
		return
	}
	if err := h.service.Engine().RemoveWinner(c.Request.Context(), n, pickedAt); err != nil {
		fail(c, "removing winner", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportWinnersCSV sends the winner list as winners.csv.
func (h *HTTPHandler) ExportWinnersCSV(c *gin.Context) {
	body, err := h.service.ExportWinnersCSV(c.Request.Context())
	if err != nil {
		fail(c, "exporting winners", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="winners.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

// RevealFrames returns the timed frames that uncover ?name= one character
// at a time.
func (h *HTTPHandler) RevealFrames(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	c.JSON(http.StatusOK, services.RevealFrames(name))
}
