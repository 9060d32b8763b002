package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"go-lead-crm/internal/domain"
)

type LeadRepo struct{ db *gorm.DB }

func NewLeadRepo(db *gorm.DB) *LeadRepo { return &LeadRepo{db: db} }

func (r *LeadRepo) Create(ctx context.Context, l *domain.Lead) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LeadRepo) FindByID(ctx context.Context, id string) (*domain.Lead, error) {
	var l domain.Lead
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// applyFilter 把封闭的过滤结构翻译成 WHERE 条件，ownerID 永远是第一道过滤
func applyFilter(tx *gorm.DB, ownerID string, f domain.LeadFilter) *gorm.DB {
	tx = tx.Where("created_by = ?", ownerID)
	if f.Q != "" {
		like := "%" + strings.ToLower(f.Q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?", like, like, like)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.Source != "" {
		tx = tx.Where("source = ?", f.Source)
	}
	if f.CreatedFrom != nil {
		tx = tx.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		tx = tx.Where("created_at <= ?", *f.CreatedTo)
	}
	return tx
}

func (r *LeadRepo) List(ctx context.Context, ownerID string, q domain.ListQuery) ([]domain.Lead, int64, error) {
	tx := applyFilter(r.db.WithContext(ctx).Model(&domain.Lead{}), ownerID, q.LeadFilter)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "desc"
	if !q.SortDesc {
		order = "asc"
	}
	offset := (q.Page - 1) * q.Limit

	var leads []domain.Lead
	err := tx.Order(fmt.Sprintf("%s %s", q.SortField, order)).
		Offset(offset).Limit(q.Limit).
		Find(&leads).Error
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *LeadRepo) Update(ctx context.Context, id string, fields map[string]any) (*domain.Lead, error) {
	res := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// 校验和写入之间行被删了
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *LeadRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Lead{})
	return res.RowsAffected > 0, res.Error
}

type statsRow struct {
	Status string
	Source string
	Count  int64
}

// Stats 一次 GROUP BY status, source 往返，在内存折叠出三个维度，
// 避免 N 次独立 COUNT
func (r *LeadRepo) Stats(ctx context.Context, ownerID string, f domain.LeadFilter) (*domain.LeadStats, error) {
	var rows []statsRow
	err := applyFilter(r.db.WithContext(ctx).Model(&domain.Lead{}), ownerID, f).
		Select("status, source, COUNT(*) AS count").
		Group("status, source").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	st := &domain.LeadStats{
		ByStatus: map[string]int64{},
		BySource: map[string]int64{},
	}
	for _, row := range rows {
		st.TotalLeads += row.Count
		st.ByStatus[row.Status] += row.Count
		st.BySource[row.Source] += row.Count
	}
	return st, nil
}
