package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"birthday-bot/internal/service"
	"birthday-bot/pkg/config"
	"birthday-bot/pkg/util"
)

type Handlers struct {
	services *service.Services
	cfg      *config.Config
}

func NewHandlers(services *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{services: services, cfg: cfg}
}

func (h *Handlers) InitRoutes() *gin.Engine {
	router := gin.Default()
	pprof.Register(router)
	router.Use(util.CORS())

	router.GET("/ping", func(c *gin.Context) {})
	router.GET("/api/upcoming", h.upcoming)

	return router
}

// upcoming returns the next birthdays as JSON, mirroring the /upcoming
// chat command for dashboards and quick checks.
func (h *Handlers) upcoming(c *gin.Context) {
	limit := h.cfg.Birthday.UpcomingLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	today := time.Now().In(h.cfg.Location())
	recs, err := h.services.UpcomingRecords(c.Request.Context(), limit, today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, recs)
}
