package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-rank/app/pipeline"
)

func NewHandler(ranker Ranker, archive ArchiveCounter, version string) *Handler {
	return &Handler{
		ranker:  ranker,
		archive: archive,
		version: version,
	}
}

func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided."})
		return
	}

	result, err := h.ranker.Run(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided."})
			return
		}
		slog.Error("Ranking failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ranking failed"})
		return
	}

	entries := make([]EntryResponse, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, newEntryResponse(entry))
	}

	c.Header("X-Feeds-Fetched", strconv.Itoa(result.Stats.FeedsFetched))
	c.Header("X-Archive-Added", strconv.Itoa(result.Stats.ArchiveAdded))

	c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	count, err := h.archive.Count(c.Request.Context())
	if err != nil {
		slog.Error("Archive error", "operation", "count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Archive error"})
		return
	}
	stats["archive_records"] = count

	c.JSON(http.StatusOK, stats)
}
