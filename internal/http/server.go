package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/motogarage/backend/internal/assignment"
	"github.com/example/motogarage/backend/internal/directory"
	"github.com/example/motogarage/backend/internal/models"
	"github.com/example/motogarage/backend/internal/queue"
	"github.com/example/motogarage/backend/internal/repository"
	"github.com/example/motogarage/backend/internal/ws"
)

// Server wraps the gin engine and collaborators needed to handle API requests.
type Server struct {
	Engine       *gin.Engine
	queue        *queue.Service
	directory    *directory.Service
	selector     assignment.Selector
	appointments *repository.AppointmentRepository
	entries      *repository.QueueEntryRepository
	hub          *ws.Hub
	pageSize     int
}

// NewServer constructs a new API server and registers routes.
func NewServer(
	queueSvc *queue.Service,
	dir *directory.Service,
	selector assignment.Selector,
	appointments *repository.AppointmentRepository,
	entries *repository.QueueEntryRepository,
	hub *ws.Hub,
	pageSize int,
) *Server {
	router := gin.Default()
	srv := &Server{
		Engine:       router,
		queue:        queueSvc,
		directory:    dir,
		selector:     selector,
		appointments: appointments,
		entries:      entries,
		hub:          hub,
		pageSize:     pageSize,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	api := s.Engine.Group("/api")
	api.POST("/queue/join", s.joinQueue)
	api.GET("/queue", s.listQueue)
	api.GET("/queue/history", s.queueHistory)
	api.GET("/queue/status", s.queueStatus)
	api.POST("/queue/toggle", s.toggleQueue)
	api.PUT("/queue/hours", s.updateHours)
	api.POST("/queue/next", s.callNext)
	api.POST("/queue/clear", s.clearQueue)
	api.GET("/queue/entries/:id", s.getEntry)
	api.POST("/queue/entries/:id/start", s.startService)
	api.POST("/queue/entries/:id/serve", s.serveEntry)
	api.POST("/queue/entries/:id/cancel", s.cancelEntry)
	api.GET("/queue/code/:code", s.lookupCode)
	api.GET("/technicians/workload", s.technicianWorkloads)
	api.GET("/technicians/:id/can-assign", s.canAssign)
	api.POST("/appointments/:id/auto-assign", s.autoAssign)

	s.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.Engine.GET("/ws", s.dashboardSocket)
}

// respondError maps the queue error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		validation *queue.ValidationError
		notFound   *queue.NotFoundError
		conflict   *queue.ConflictError
		dependency *queue.DependencyError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.As(err, &dependency):
		c.JSON(http.StatusBadGateway, gin.H{"error": dependency.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) joinQueue(c *gin.Context) {
	var payload struct {
		CustomerID   string `json:"customerId" binding:"required"`
		ServiceType  string `json:"serviceType" binding:"required"`
		MotorcycleID string `json:"motorcycleId"`
		Plate        string `json:"plate"`
		MileageKm    *int   `json:"mileageKm"`
		Notes        string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customerID, err := uuid.Parse(payload.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customerId"})
		return
	}
	in := queue.AddInput{
		CustomerID:  customerID,
		ServiceType: models.ServiceType(payload.ServiceType),
		Plate:       payload.Plate,
		MileageKm:   payload.MileageKm,
		Notes:       payload.Notes,
	}
	if payload.MotorcycleID != "" {
		motoID, err := uuid.Parse(payload.MotorcycleID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid motorcycleId"})
			return
		}
		in.MotorcycleID = &motoID
	}
	entry, err := s.queue.AddToQueue(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) listQueue(c *gin.Context) {
	c.JSON(http.StatusOK, s.queue.Store().Snapshot())
}

func (s *Server) queueHistory(c *gin.Context) {
	page := 1
	if v := c.Query("page"); v != "" {
		if p, err := parsePositiveInt(v); err == nil {
			page = p
		}
	}
	entries, err := s.entries.ListHistory(c.Request.Context(), s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) queueStatus(c *gin.Context) {
	status := s.queue.Store().StatusSnapshot()
	c.JSON(http.StatusOK, gin.H{
		"isOpen":         status.IsOpen,
		"acceptsWalkIns": s.queue.IsQueueOpen(),
		"currentCount":   status.CurrentCount,
		"operatingHours": status.Hours(),
		"lastUpdated":    status.LastUpdated,
	})
}

func (s *Server) toggleQueue(c *gin.Context) {
	isOpen, err := s.queue.ToggleQueueStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isOpen": isOpen})
}

func (s *Server) updateHours(c *gin.Context) {
	var hours models.WeekHours
	if err := c.ShouldBindJSON(&hours); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.queue.UpdateOperatingHours(c.Request.Context(), hours); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) callNext(c *gin.Context) {
	var payload struct {
		TechnicianID string `json:"technicianId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	techID, err := uuid.Parse(payload.TechnicianID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technicianId"})
		return
	}
	entry, err := s.queue.CallNext(c.Request.Context(), techID)
	if err != nil {
		respondError(c, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"entry": nil, "message": "queue is empty"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

func (s *Server) clearQueue(c *gin.Context) {
	cleared, err := s.queue.ClearQueue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

func (s *Server) getEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	entry, ok := s.queue.GetEntry(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "queue entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) startService(c *gin.Context) {
	s.transition(c, s.queue.StartService)
}

func (s *Server) serveEntry(c *gin.Context) {
	s.transition(c, s.queue.ServeEntry)
}

func (s *Server) cancelEntry(c *gin.Context) {
	s.transition(c, s.queue.CancelEntry)
}

func (s *Server) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*models.QueueEntry, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	entry, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) lookupCode(c *gin.Context) {
	code := c.Param("code")
	entry, ok := s.queue.GetEntryByCode(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":             true,
		"position":          entry.Position,
		"status":            entry.Status,
		"estimatedWaitTime": entry.EstimatedWaitMinutes,
		"expiresAt":         entry.ExpiresAt,
	})
}

func (s *Server) technicianWorkloads(c *gin.Context) {
	workloads, err := s.directory.Workloads(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, workloads)
}

func (s *Server) canAssign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	workloads, err := s.directory.Workloads(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"canAssign": s.selector.CanAssignTask(id, workloads)})
}

func (s *Server) autoAssign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	appt, err := s.appointments.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
		return
	}
	techs, appts, orders, err := s.directory.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	tech, ok := s.selector.AutoAssignTechnician(*appt, techs, appts, orders)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"assigned": false, "technician": nil})
		return
	}
	appt.TechnicianID = &tech.ID
	if err := s.appointments.Save(c.Request.Context(), appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.directory.InvalidateWorkloads(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"assigned": true, "technician": tech})
}

func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, errors.Errorf("invalid page %q", v)
	}
	return n, nil
}

func (s *Server) dashboardSocket(c *gin.Context) {
	s.hub.Handle(c, gin.H{
		"event":   "queue.snapshot",
		"entries": s.queue.Store().Snapshot(),
		"status":  s.queue.Store().StatusSnapshot(),
	})
}
