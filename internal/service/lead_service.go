package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"go-lead-crm/internal/core/cache"
	"go-lead-crm/internal/domain"
	"go-lead-crm/pkg/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// sortColumns 排序字段白名单：外部传 JSON 风格字段名，内部映射为列名
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"status":    "status",
	"source":    "source",
}

type CreateLeadInput struct {
	Name   string
	Email  string
	Phone  string
	Source string
	Status string
	Notes  string
}

// UpdateLeadInput 指针区分“没传”和“传了空值”
type UpdateLeadInput struct {
	Name   *string
	Email  *string
	Phone  *string
	Source *string
	Status *string
	Notes  *string
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int64 `json:"totalPages"`
}

type LeadService struct {
	leads    domain.LeadStore
	cache    *cache.Cache // 可为 nil：无 Redis 时直接回源
	statsTTL time.Duration
}

func NewLeadService(leads domain.LeadStore, c *cache.Cache, statsTTL time.Duration) *LeadService {
	return &LeadService{leads: leads, cache: c, statsTTL: statsTTL}
}

func (s *LeadService) Create(ctx context.Context, userID string, in CreateLeadInput) (*domain.Lead, error) {
	if in.Status == "" {
		in.Status = domain.StatusNew
	}
	if in.Name == "" || in.Phone == "" || in.Source == "" || in.Status == "" {
		return nil, BadRequest("Missing required fields")
	}

	l := &domain.Lead{
		ID:        utils.NewID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Source:    in.Source,
		Status:    in.Status,
		Notes:     in.Notes,
		CreatedBy: userID,
	}
	if err := s.leads.Create(ctx, l); err != nil {
		return nil, Internal("create lead failed", err)
	}
	s.bumpStats(ctx, userID)
	return l, nil
}

func (s *LeadService) List(ctx context.Context, userID string, q domain.ListQuery) ([]domain.Lead, Pagination, error) {
	normalizeQuery(&q)

	leads, total, err := s.leads.List(ctx, userID, q)
	if err != nil {
		return nil, Pagination{}, Internal("list leads failed", err)
	}
	return leads, Pagination{
		Total:      total,
		Page:       q.Page,
		TotalPages: (total + int64(q.Limit) - 1) / int64(q.Limit),
	}, nil
}

// Get 单条读取前的所有权校验：每次单条读/改/删都必须先走这里
func (s *LeadService) Get(ctx context.Context, userID, leadID string) (*domain.Lead, error) {
	l, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, Internal("find lead failed", err)
	}
	if l == nil {
		return nil, NotFound("Lead not found")
	}
	if l.CreatedBy != userID {
		return nil, Forbidden("Not authorized to view this lead")
	}
	return l, nil
}

func (s *LeadService) Update(ctx context.Context, userID, leadID string, in UpdateLeadInput) (*domain.Lead, error) {
	current, err := s.Get(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Source != nil {
		fields["source"] = *in.Source
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if len(fields) == 0 {
		return current, nil
	}

	updated, err := s.leads.Update(ctx, leadID, fields)
	if err != nil {
		return nil, Internal("update lead failed", err)
	}
	if updated == nil {
		// 校验后、写入前被并发删除
		return nil, NotFound("Lead not found")
	}
	s.bumpStats(ctx, userID)
	return updated, nil
}

func (s *LeadService) Delete(ctx context.Context, userID, leadID string) error {
	if _, err := s.Get(ctx, userID, leadID); err != nil {
		return err
	}
	ok, err := s.leads.Delete(ctx, leadID)
	if err != nil {
		return Internal("delete lead failed", err)
	}
	if !ok {
		return NotFound("Lead not found")
	}
	s.bumpStats(ctx, userID)
	return nil
}

func (s *LeadService) Stats(ctx context.Context, userID string, f domain.LeadFilter) (*domain.LeadStats, error) {
	load := func(ctx context.Context) (*domain.LeadStats, error) {
		return s.leads.Stats(ctx, userID, f)
	}

	if s.cache == nil {
		st, err := load(ctx)
		if err != nil {
			return nil, Internal("lead stats failed", err)
		}
		return st, nil
	}

	// key 带上每用户 generation：写路径 INCR 后旧 key 自然失效
	gen := s.cache.Generation(ctx, statsScope(userID))
	key := fmt.Sprintf("leads:stats:%s:%d:%d", userID, gen, filterHash(f))
	st, err := cache.GetOrLoadJSON(s.cache, ctx, key, s.statsTTL, load)
	if err != nil {
		return nil, Internal("lead stats failed", err)
	}
	return st, nil
}

func (s *LeadService) bumpStats(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.BumpGeneration(ctx, statsScope(userID))
	}
}

func statsScope(userID string) string { return "leads:" + userID }

func filterHash(f domain.LeadFilter) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s", f.Q, f.Status, f.Source)
	if f.CreatedFrom != nil {
		fmt.Fprintf(h, "|%d", f.CreatedFrom.Unix())
	}
	if f.CreatedTo != nil {
		fmt.Fprintf(h, "|%d", f.CreatedTo.Unix())
	}
	return h.Sum32()
}

func normalizeQuery(q *domain.ListQuery) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if col, ok := sortColumns[q.SortField]; ok {
		q.SortField = col
	} else {
		q.SortField = "created_at"
		q.SortDesc = true
	}
}
