package invoices

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/clientdesk/clientdesk-backend/internal/auth"
	"github.com/clientdesk/clientdesk-backend/internal/clients"
	"github.com/clientdesk/clientdesk-backend/internal/money"
	"github.com/clientdesk/clientdesk-backend/internal/users"
)

// descriptionRe is the allowed line-item description charset.
var descriptionRe = regexp.MustCompile(`^[A-Za-z0-9 .!?$#%(),'" ]+$`)

const dateLayout = "2006-01-02"

type Handler struct {
	repo    *Repo
	users   *users.Repo
	clients *clients.Repo
}

func Register(rg *gin.RouterGroup, repo *Repo, userRepo *users.Repo, clientRepo *clients.Repo) {
	h := &Handler{repo: repo, users: userRepo, clients: clientRepo}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.GET("/:id/pdf", h.pdf)
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
		"code": "NOT_FOUND", "message": "invoice not found",
	}})
}

type lineItemReq struct {
	Description    string `json:"description"`
	Qty            int64  `json:"qty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

type createReq struct {
	ClientID  string        `json:"clientId" binding:"required"`
	ProjectID string        `json:"projectId"`
	LineItems []lineItemReq `json:"lineItems"`
	IssueDate string        `json:"issueDate" binding:"required"`
	DueDate   string        `json:"dueDate" binding:"required"`
	Notes     string        `json:"notes"`
}

// validateLineItems rejects malformed items before anything touches the
// calculator or the sequencer. Invoices must carry at least one item.
func validateLineItems(items []lineItemReq) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one line item is required")
	}
	out := make([]LineItem, 0, len(items))
	for i, li := range items {
		if li.Description == "" || !descriptionRe.MatchString(li.Description) {
			return nil, fmt.Errorf("lineItems[%d]: description is empty or contains invalid characters", i)
		}
		if li.Qty < 1 {
			return nil, fmt.Errorf("lineItems[%d]: qty must be at least 1", i)
		}
		if li.UnitPriceCents < 0 {
			return nil, fmt.Errorf("lineItems[%d]: unitPriceCents must not be negative", i)
		}
		out = append(out, LineItem{
			Description:    li.Description,
			Qty:            li.Qty,
			UnitPriceCents: money.Cents(li.UnitPriceCents),
		})
	}
	return out, nil
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	items, err := validateLineItems(req.LineItems)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	issueDate, err := time.Parse(dateLayout, req.IssueDate)
	if err != nil {
		badRequest(c, "issueDate must be YYYY-MM-DD")
		return
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		badRequest(c, "dueDate must be YYYY-MM-DD")
		return
	}

	inv, err := h.repo.Create(c.Request.Context(), auth.OwnerID(c), Invoice{
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		LineItems: items,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNumberConflict):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": gin.H{
				"code": "NUMBER_CONFLICT", "message": "could not assign a unique invoice number",
			}})
		case errors.Is(err, ErrMalformedNumber):
			log.Error().Err(err).Str("owner_id", auth.OwnerID(c)).Msg("invoice number sequence is corrupt")
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{
				"code": "DATA_INTEGRITY", "message": "stored invoice number is malformed",
			}})
		default:
			internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "invoice": inv})
}

func (h *Handler) list(c *gin.Context) {
	f := ListFilter{
		Status:   Status(c.Query("status")),
		ClientID: c.Query("clientId"),
	}
	if f.Status != "" && !f.Status.Valid() {
		badRequest(c, "status must be one of draft, sent, paid")
		return
	}

	items, err := h.repo.List(c.Request.Context(), auth.OwnerID(c), f)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invoices": items})
}

func (h *Handler) get(c *gin.Context) {
	inv, err := h.repo.GetByID(c.Request.Context(), auth.OwnerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notFound(c)
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invoice": inv})
}

type updateReq struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	var patch UpdatePatch
	if req.Status != nil {
		s := Status(*req.Status)
		if !s.Valid() {
			badRequest(c, "status must be one of draft, sent, paid")
			return
		}
		patch.Status = &s
	}
	patch.Notes = req.Notes

	inv, err := h.repo.Update(c.Request.Context(), auth.OwnerID(c), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notFound(c)
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invoice": inv})
}

func (h *Handler) pdf(c *gin.Context) {
	ownerID := auth.OwnerID(c)

	inv, err := h.repo.GetByID(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notFound(c)
			return
		}
		internalError(c, err)
		return
	}

	from, err := h.users.GetByID(c.Request.Context(), ownerID)
	if err != nil {
		internalError(c, err)
		return
	}
	to, err := h.clients.GetByID(c.Request.Context(), ownerID, inv.ClientID)
	if err != nil {
		internalError(c, err)
		return
	}

	out, err := RenderPDF(inv, from, to)
	if err != nil {
		internalError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, inv.Number))
	c.Data(http.StatusOK, "application/pdf", out)
}
