package domain

import (
	"context"
	"time"
)

const (
	SourceWebsite  = "website"
	SourceReferral = "referral"
	SourceCold     = "cold"

	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusWon       = "won"
	StatusLost      = "lost"
)

var (
	LeadSources  = []string{SourceWebsite, SourceReferral, SourceCold}
	LeadStatuses = []string{StatusNew, StatusContacted, StatusQualified, StatusWon, StatusLost}
)

type Lead struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:191" json:"email,omitempty"`
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	Source    string    `gorm:"size:16;not null;index" json:"source"`
	Status    string    `gorm:"size:16;not null;default:new;index" json:"status"`
	Notes     string    `gorm:"size:500" json:"notes,omitempty"`
	CreatedBy string    `gorm:"size:32;not null;index" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Lead) TableName() string { return "leads" }

// LeadFilter 封闭的过滤入参：只允许这几个维度，
// 不把任意 query key 透传给查询引擎
type LeadFilter struct {
	Q           string     // 名称/邮箱/电话 子串（不区分大小写）
	Status      string     // 精确匹配
	Source      string     // 精确匹配
	CreatedFrom *time.Time // 闭区间
	CreatedTo   *time.Time // 闭区间
}

// ListQuery 列表查询 = 过滤 + 排序 + 分页
type ListQuery struct {
	LeadFilter
	SortField string // created_at / updated_at / name / status / source
	SortDesc  bool
	Page      int
	Limit     int
}

type LeadStats struct {
	TotalLeads int64            `json:"totalLeads"`
	ByStatus   map[string]int64 `json:"byStatus"`
	BySource   map[string]int64 `json:"bySource"`
}

// LeadStore 线索存储。List/Stats 必须带 ownerID 前置过滤，杜绝跨用户泄露。
type LeadStore interface {
	Create(ctx context.Context, l *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, ownerID string, q ListQuery) ([]Lead, int64, error)
	// Update 按列做部分更新，行不存在时返回 (nil, nil)
	Update(ctx context.Context, id string, fields map[string]any) (*Lead, error)
	Delete(ctx context.Context, id string) (bool, error)
	// Stats 单次聚合往返：GROUP BY status, source 后在内存折叠
	Stats(ctx context.Context, ownerID string, f LeadFilter) (*LeadStats, error)
}
