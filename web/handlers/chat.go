package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"datachat/agent"
	"datachat/chart"
	"datachat/database"
	"datachat/dataset"
	"datachat/web/format"
	"datachat/web/services"
	"datachat/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatHandler struct {
	router         *agent.Router
	store          *database.PostgresStore
	messageService *services.MessageService
	sessionService *services.SessionService
	logger         *zap.Logger
	maxDatasetRows int
}

type ChatRequest struct {
	Message string `json:"message" form:"message"`
}

func NewChatHandler(
	router *agent.Router,
	store *database.PostgresStore,
	messageService *services.MessageService,
	sessionService *services.SessionService,
	logger *zap.Logger,
	maxDatasetRows int,
) *ChatHandler {
	return &ChatHandler{
		router:         router,
		store:          store,
		messageService: messageService,
		sessionService: sessionService,
		logger:         logger,
		maxDatasetRows: maxDatasetRows,
	}
}

// SendMessage routes one user query, with an optional uploaded dataset, and
// returns the structured reply.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uuid.UUID)

	var req ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Failed to bind chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var ds *dataset.Dataset
	if file, err := c.FormFile("file"); err == nil {
		ds = h.parseUpload(file, sessionID)
	}

	if strings.TrimSpace(req.Message) == "" {
		if ds == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
			return
		}
		req.Message = fmt.Sprintf("I've uploaded %s. Please analyze this dataset.", ds.FileName)
	}

	h.ensureLoaded(c, sessionID)

	if len(h.router.History(sessionID.String()).Turns()) == 0 {
		h.sessionService.TitleSession(c.Request.Context(), sessionID, req.Message)
	}

	var rows []chart.Row
	var columns []string
	var fileName string
	if ds != nil {
		rows = ds.Rows
		columns = ds.Columns
		fileName = ds.FileName
	}

	// The router hands back the turns it appended for this exchange; for
	// error replies that is the user turn only. Persisting from the return
	// value keeps concurrent requests on one session from saving each
	// other's turns.
	reply, produced := h.router.Route(c.Request.Context(), sessionID.String(), req.Message, rows, columns, fileName)
	h.messageService.PersistExchange(c.Request.Context(), sessionID, produced, reply)

	c.JSON(http.StatusOK, gin.H{
		"kind":      reply.Kind,
		"answer":    reply.Answer,
		"rendered":  format.RenderHTML(reply.Answer),
		"followUps": reply.FollowUps,
		"chart":     reply.Chart,
	})
}

// History returns the session's turn log. An empty session answers with the
// fixed greeting instead, so the UI always has something to show.
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uuid.UUID)
	h.ensureLoaded(c, sessionID)

	turns := h.router.History(sessionID.String()).Turns()
	if len(turns) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"turns":     []types.Turn{},
			"greeting":  agent.GreetingText,
			"followUps": agent.GreetingFollowUps,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"turns": turns})
}

// Reset clears the session's conversation state, in memory and in the
// database.
func (h *ChatHandler) Reset(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uuid.UUID)

	h.router.Reset(sessionID.String())
	if err := h.store.ClearSession(c.Request.Context(), sessionID); err != nil {
		h.logger.Error("Failed to clear persisted session",
			zap.Error(err),
			zap.String("session_id", sessionID.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// parseUpload reads an uploaded dataset file. A file that cannot be parsed
// is treated as no dataset at all; the router never sees a partial one.
func (h *ChatHandler) parseUpload(file *multipart.FileHeader, sessionID uuid.UUID) *dataset.Dataset {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".csv" && ext != ".json" {
		h.logger.Warn("Rejected dataset upload with unsupported extension",
			zap.String("filename", file.Filename),
			zap.String("session_id", sessionID.String()))
		return nil
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Warn("Failed to open uploaded dataset", zap.Error(err))
		return nil
	}
	defer src.Close()

	ds, err := dataset.Parse(src, filepath.Base(file.Filename), h.maxDatasetRows)
	if err != nil {
		h.logger.Warn("Failed to parse uploaded dataset",
			zap.Error(err),
			zap.String("filename", file.Filename),
			zap.String("session_id", sessionID.String()))
		return nil
	}
	if len(ds.Rows) == 0 {
		return nil
	}

	h.logger.Info("Dataset uploaded",
		zap.String("filename", ds.FileName),
		zap.Int("rows", len(ds.Rows)),
		zap.String("session_id", sessionID.String()))
	return ds
}

// ensureLoaded rebuilds the in-memory conversation state from the database
// after a restart. No-op when the session is already loaded or has no
// persisted turns.
func (h *ChatHandler) ensureLoaded(c *gin.Context, sessionID uuid.UUID) {
	history := h.router.History(sessionID.String())
	if len(history.Turns()) > 0 {
		return
	}

	turns, err := h.store.GetTurnsBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Warn("Failed to load persisted turns",
			zap.Error(err),
			zap.String("session_id", sessionID.String()))
		return
	}
	if len(turns) == 0 {
		return
	}

	lastChart, err := h.store.GetLastChart(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Warn("Failed to load cached chart",
			zap.Error(err),
			zap.String("session_id", sessionID.String()))
	}
	history.Load(turns, lastChart)
}
