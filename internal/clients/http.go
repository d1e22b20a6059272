package clients

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/clientdesk/clientdesk-backend/internal/auth"
	"github.com/gin-gonic/gin"
)

var (
	nameRe    = regexp.MustCompile(`^[A-Za-z ]+$`)
	companyRe = regexp.MustCompile(`^[A-Za-z0-9 -]+$`)
)

type Handler struct {
	repo *Repo
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
}

type createReq struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Company string `json:"company" binding:"required"`
	Notes   string `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": gin.H{
			"code": "VALIDATION", "message": "invalid body",
		}})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Company = strings.TrimSpace(req.Company)
	if !nameRe.MatchString(req.Name) || !companyRe.MatchString(req.Company) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": gin.H{
			"code": "VALIDATION", "message": "name or company contains invalid characters",
		}})
		return
	}

	created, err := h.repo.Create(c.Request.Context(), auth.OwnerID(c), Client{
		Name:    req.Name,
		Email:   strings.TrimSpace(req.Email),
		Phone:   req.Phone,
		Company: req.Company,
		Notes:   req.Notes,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{
			"code": "INTERNAL", "message": err.Error(),
		}})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "client": created})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), auth.OwnerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{
			"code": "INTERNAL", "message": err.Error(),
		}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "clients": items})
}

func (h *Handler) get(c *gin.Context) {
	cl, err := h.repo.GetByID(c.Request.Context(), auth.OwnerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": gin.H{
				"code": "NOT_FOUND", "message": "client not found",
			}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{
			"code": "INTERNAL", "message": err.Error(),
		}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "client": cl})
}
