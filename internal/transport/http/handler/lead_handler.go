package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-lead-crm/internal/domain"
	"go-lead-crm/internal/service"
	"go-lead-crm/internal/transport/http/middleware"
	"go-lead-crm/internal/transport/http/response"
)

type leadCreateReq struct {
	Name   string `json:"name" binding:"required,min=2,max=100"`
	Email  string `json:"email" binding:"omitempty,email"`
	Phone  string `json:"phone" binding:"required,phone"`
	Source string `json:"source" binding:"required,oneof=website referral cold"`
	Status string `json:"status" binding:"omitempty,oneof=new contacted qualified won lost"`
	Notes  string `json:"notes" binding:"omitempty,max=500"`
}

type leadUpdateReq struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Phone  *string `json:"phone" binding:"omitempty,phone"`
	Source *string `json:"source" binding:"omitempty,oneof=website referral cold"`
	Status *string `json:"status" binding:"omitempty,oneof=new contacted qualified won lost"`
	Notes  *string `json:"notes" binding:"omitempty,max=500"`
}

type LeadHandler struct {
	svc *service.LeadService
	log *zap.Logger
}

func NewLeadHandler(svc *service.LeadService, l *zap.Logger) *LeadHandler {
	return &LeadHandler{svc: svc, log: l}
}

// Create POST /leads
func (h *LeadHandler) Create(c *gin.Context) {
	var req leadCreateReq
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	lead, err := h.svc.Create(c.Request.Context(), c.GetString(middleware.KeyUserID), service.CreateLeadInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Source: req.Source,
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Lead created successfully", "lead": lead})
}

// List GET /leads
func (h *LeadHandler) List(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	leads, page, err := h.svc.List(c.Request.Context(), c.GetString(middleware.KeyUserID), q)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	c.JSON(http.StatusOK, gin.H{"data": leads, "pagination": page})
}

// Stats GET /leads/stats/summary
// 过滤词表同 List，去掉分页和排序
func (h *LeadHandler) Stats(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	st, err := h.svc.Stats(c.Request.Context(), c.GetString(middleware.KeyUserID), f)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Get GET /leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.svc.Get(c.Request.Context(), c.GetString(middleware.KeyUserID), c.Param("id"))
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

// Update PATCH /leads/:id
func (h *LeadHandler) Update(c *gin.Context) {
	var req leadUpdateReq
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	lead, err := h.svc.Update(c.Request.Context(), c.GetString(middleware.KeyUserID), c.Param("id"), service.UpdateLeadInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Source: req.Source,
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lead updated successfully", "lead": lead})
}

// Delete DELETE /leads/:id
func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.GetString(middleware.KeyUserID), c.Param("id")); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted successfully"})
}

func parseFilter(c *gin.Context) (domain.LeadFilter, error) {
	f := domain.LeadFilter{
		Q:      c.Query("q"),
		Status: c.Query("status"),
		Source: c.Query("source"),
	}
	if f.Status != "" && !contains(domain.LeadStatuses, f.Status) {
		return f, service.BadRequest("Invalid status filter")
	}
	if f.Source != "" && !contains(domain.LeadSources, f.Source) {
		return f, service.BadRequest("Invalid source filter")
	}
	var err error
	if f.CreatedFrom, err = parseDate(c.Query("createdFrom")); err != nil {
		return f, service.BadRequest("Invalid createdFrom date")
	}
	if f.CreatedTo, err = parseDate(c.Query("createdTo")); err != nil {
		return f, service.BadRequest("Invalid createdTo date")
	}
	return f, nil
}

func parseListQuery(c *gin.Context) (domain.ListQuery, error) {
	var q domain.ListQuery
	f, err := parseFilter(c)
	if err != nil {
		return q, err
	}
	q.LeadFilter = f
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	// sort=field:asc|desc，默认 createdAt:desc
	if sort := c.Query("sort"); sort != "" {
		field, order, _ := strings.Cut(sort, ":")
		q.SortField = field
		q.SortDesc = order != "asc"
	} else {
		q.SortField = "createdAt"
		q.SortDesc = true
	}
	return q, nil
}

// parseDate 支持 RFC3339 和 2006-01-02 两种写法
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
