package model

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DomainStatus 域名有效状态
type DomainStatus int

const (
	DomainUnknown  DomainStatus = iota // 不清楚状况
	DomainHistory                      // 搜索引擎或证书记录中出现过
	DomainInner                        // 内网可以访问
	DomainExternal                     // 外网可以访问
	DomainSpecial                      // 特定DNS解析
)

func (s DomainStatus) String() string {
	switch s {
	case DomainHistory:
		return "history"
	case DomainInner:
		return "inner"
	case DomainExternal:
		return "external"
	case DomainSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// DomainResult 子域名扫描结果, 同一任务内域名唯一
type DomainResult struct {
	gorm.Model

	DomainName string       `desc:"域名" gorm:"uniqueIndex:idx_task_domain;not null"`
	Source     string       `desc:"发现来源"`
	Status     DomainStatus `desc:"域名有效状态"`
	TaskName   string       `desc:"关联任务" gorm:"uniqueIndex:idx_task_domain;not null"`
}

// SaveDomainResults 保存结果, 同一任务内重复的域名只更新来源和状态
func (s *Store) SaveDomainResults(drs []*DomainResult) error {
	if len(drs) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_name"}, {Name: "domain_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"source", "status", "updated_at"}),
	}).Create(drs).Error
}

// ListDomainResults 按域名排序返回某次任务的全部结果
func (s *Store) ListDomainResults(task string) (drs []DomainResult, err error) {
	err = s.db.Where("task_name = ?", task).Order("domain_name").Find(&drs).Error
	return
}
