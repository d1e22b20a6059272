package projects

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clientdesk/clientdesk-backend/internal/auth"
	"github.com/clientdesk/clientdesk-backend/internal/money"
)

const dateLayout = "2006-01-02"

type Handler struct {
	repo *Repo
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.detail)
	rg.POST("/:id/tasks", h.createTask)
	rg.GET("/:id/tasks", h.listTasks)
	rg.POST("/:id/time-logs", h.createTimeLog)
	rg.GET("/:id/time-logs", h.listTimeLogs)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": gin.H{
		"code": "VALIDATION", "message": msg,
	}})
}

func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{
		"code": "INTERNAL", "message": err.Error(),
	}})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": gin.H{
		"code": "NOT_FOUND", "message": "project not found",
	}})
}

type createReq struct {
	ClientID        string `json:"clientId" binding:"required"`
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	StartDate       string `json:"startDate"`
	DueDate         string `json:"dueDate"`
	HourlyRateCents *int64 `json:"hourlyRateCents"`
	FlatFeeCents    *int64 `json:"flatFeeCents"`
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalCents(v *int64) *money.Cents {
	if v == nil {
		return nil
	}
	c := money.Cents(*v)
	return &c
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		badRequest(c, "invalid body")
		return
	}
	if req.Status != "" && !Status(req.Status).Valid() {
		badRequest(c, "status must be one of active, paused, completed")
		return
	}
	if (req.HourlyRateCents != nil && *req.HourlyRateCents < 0) ||
		(req.FlatFeeCents != nil && *req.FlatFeeCents < 0) {
		badRequest(c, "rates must not be negative")
		return
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		badRequest(c, "startDate must be YYYY-MM-DD")
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		badRequest(c, "dueDate must be YYYY-MM-DD")
		return
	}

	p, err := h.repo.Create(c.Request.Context(), auth.OwnerID(c), Project{
		ClientID:        req.ClientID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Status:          Status(req.Status),
		StartDate:       startDate,
		DueDate:         dueDate,
		HourlyRateCents: optionalCents(req.HourlyRateCents),
		FlatFeeCents:    optionalCents(req.FlatFeeCents),
	})
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	status := Status(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, "status must be one of active, paused, completed")
		return
	}

	items, err := h.repo.List(c.Request.Context(), auth.OwnerID(c), status)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

// projectDetail is the project plus its computed-on-read aggregation.
// TotalCents here is derived from the current time logs on every request,
// never stored.
type projectDetail struct {
	Project
	Tasks        []Task      `json:"tasks"`
	TimeLogs     []TimeLog   `json:"timeLogs"`
	TotalMinutes int64       `json:"totalMinutes"`
	TotalCents   money.Cents `json:"totalCents"`
}

func (h *Handler) detail(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.repo.GetByID(ctx, auth.OwnerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notFound(c)
			return
		}
		internalError(c, err)
		return
	}

	tasks, err := h.repo.ListTasks(ctx, p.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	logs, err := h.repo.ListTimeLogs(ctx, p.ID)
	if err != nil {
		internalError(c, err)
		return
	}

	rev := ComputeRevenue(p, logs)

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": projectDetail{
		Project:      *p,
		Tasks:        tasks,
		TimeLogs:     logs,
		TotalMinutes: rev.TotalMinutes,
		TotalCents:   rev.TotalCents,
	}})
}

type taskReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

func (h *Handler) createTask(c *gin.Context) {
	p, err := h.repo.GetByID(c.Request.Context(), auth.OwnerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notFound(c)
			return
		}
		internalError(c, err)
		return
	}

	var req taskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if req.Status != "" && !TaskStatus(req.Status).Valid() {
		badRequest(c, "status must be one of todo, doing, done")
		return
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		badRequest(c, "dueDate must be YYYY-MM-DD")
		return
	}

	t, err := h.repo.CreateTask(c.Request.Context(), Task{
		ProjectID:   p.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      TaskStatus(req.Status),
		Priority:    req.Priority,
		DueDate:     dueDate,
	})
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "task": t})
}

func (h *Handler) listTasks(c *gin.Context) {
	p, err := h.repo.GetByID(c.Request.Context(), auth.OwnerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notFound(c)
			return
		}
		internalError(c, err)
		return
	}

	tasks, err := h.repo.ListTasks(c.Request.Context(), p.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": tasks})
}

type timeLogReq struct {
	Date      string `json:"date" binding:"required"`
	Minutes   int64  `json:"minutes" binding:"required"`
	RateCents *int64 `json:"rateCents"`
	Note      string `json:"note"`
}

func (h *Handler) createTimeLog(c *gin.Context) {
	p, err := h.repo.GetByID(c.Request.Context(), auth.OwnerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notFound(c)
			return
		}
		internalError(c, err)
		return
	}

	var req timeLogReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "date and minutes are required")
		return
	}
	if req.Minutes < 1 {
		badRequest(c, "minutes must be at least 1")
		return
	}
	if req.RateCents != nil && *req.RateCents < 0 {
		badRequest(c, "rateCents must not be negative")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}

	l, err := h.repo.CreateTimeLog(c.Request.Context(), TimeLog{
		ProjectID: p.ID,
		UserID:    auth.OwnerID(c),
		Date:      date,
		Minutes:   req.Minutes,
		RateCents: optionalCents(req.RateCents),
		Note:      req.Note,
	})
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "timeLog": l})
}

func (h *Handler) listTimeLogs(c *gin.Context) {
	p, err := h.repo.GetByID(c.Request.Context(), auth.OwnerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notFound(c)
			return
		}
		internalError(c, err)
		return
	}

	logs, err := h.repo.ListTimeLogs(c.Request.Context(), p.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "timeLogs": logs})
}
