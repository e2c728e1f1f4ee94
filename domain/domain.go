package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"subscout/model"
)

// DefaultOutput 默认结果文件
const DefaultOutput = "subdomains.txt"

// SubdomainResult 简化的子域名搜集结果
type SubdomainResult map[string]struct{}

// Sorted 按字典序返回集合内容
func (sr SubdomainResult) Sorted() []string {
	out := make([]string, 0, len(sr))
	for k := range sr {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DiscoveryResult 一次扫描的最终结果
type DiscoveryResult struct {
	RootDomain string
	Hosts      []string
	Sources    map[string]int `desc:"各模块贡献的结果数量"`
	Output     string
}

// Empty 没有发现任何子域名
func (r *DiscoveryResult) Empty() bool {
	return len(r.Hosts) == 0
}

// ResultStore 结果持久化接口, 由model.Store实现
type ResultStore interface {
	SaveDomainResults(drs []*model.DomainResult) error
}

// Scout 汇总各模块的结果, 去重后写入文件并输出到终端
type Scout struct {
	Modules       []DomainModuler
	CachedResults SubdomainResult

	sources map[string]string
	*ScoutOption
}

// ScoutOption 用户配置项
type ScoutOption struct {
	*DomainModuleOption

	Output   string      `desc:"结果文件"`
	TaskName string      `desc:"持久化时关联的任务名"`
	Store    ResultStore `desc:"为空时不做持久化"`
	Printer  *Printer
}

// CreateScout 用来创建Scout实例的方法, 推荐使用
func CreateScout(opt *ScoutOption, modules ...DomainModuler) (s *Scout) {
	if opt == nil {
		opt = &ScoutOption{}
	}
	if opt.DomainModuleOption == nil {
		opt.DomainModuleOption = &DomainModuleOption{}
	}
	s = &Scout{
		Modules:       modules,
		CachedResults: make(SubdomainResult),
		sources:       make(map[string]string),
		ScoutOption:   opt,
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	if s.TaskName == "" {
		s.TaskName = fmt.Sprintf("%s-%s", s.RootDomain, time.Now().Format("20060102150405"))
	}
	if s.Printer == nil {
		s.Printer = NewPrinter(io.Discard, io.Discard, true)
	}
	return
}

// PermissiveOptionCheck 对用户配置项进行宽松的检查
func (s *Scout) PermissiveOptionCheck() (ok bool) {
	log := s.logger()
	if len(s.Modules) == 0 {
		log.Warn("最少启用一个子域名探测模块")
		return false
	}
	if s.RootDomain == "" {
		log.Warn("未指定根域名")
		return false
	}
	log.Debug("用户配置项检查通过")
	return true
}

// Normalize 把子域名前缀补全为完整域名, 已是完整域名的保持不变
func Normalize(root, entry string) (string, bool) {
	if entry == "" || entry == root {
		return "", false
	}
	if strings.HasSuffix(entry, "."+root) {
		return entry, true
	}
	return entry + "." + root, true
}

// Process 对结果去重保存到内存中
func (s *Scout) Process(source string, sr SubdomainResult) (added int) {
	for r := range sr {
		host, ok := Normalize(s.RootDomain, r)
		if !ok {
			continue
		}
		if _, ok := s.CachedResults[host]; ok {
			continue
		}
		s.CachedResults[host] = struct{}{}
		s.sources[host] = source
		added++
	}
	return
}

// Persistence 持久化保存结果
func (s *Scout) Persistence() error {
	if s.Store == nil || len(s.CachedResults) == 0 {
		return nil
	}

	drs := make([]*model.DomainResult, 0, len(s.CachedResults))
	for _, host := range s.CachedResults.Sorted() {
		status := model.DomainHistory
		if s.sources[host] == "guesser" {
			status = model.DomainExternal
		}
		drs = append(drs, &model.DomainResult{
			DomainName: host,
			Source:     s.sources[host],
			Status:     status,
			TaskName:   s.TaskName,
		})
	}
	return s.Store.SaveDomainResults(drs)
}

// Start 依次运行各模块, 配置检查不通过或写结果文件失败时返回错误
func (s *Scout) Start(ctx context.Context) (*DiscoveryResult, error) {
	log := s.logger()
	if !s.PermissiveOptionCheck() {
		return nil, errors.New("invalid scout option")
	}
	log.Infof("子域名搜集开始: %s", s.RootDomain)

	dr := &DiscoveryResult{
		RootDomain: s.RootDomain,
		Sources:    make(map[string]int),
		Output:     s.Output,
	}
	for _, m := range s.Modules {
		if ctx.Err() != nil {
			log.Warnf("搜集被中断, 跳过模块%v", m.Name())
			break
		}
		sr := m.Run(ctx)
		dr.Sources[m.Name()] = len(sr)
		added := s.Process(m.Name(), sr)
		s.Printer.Status("%s: %d result(s), %d new", m.Name(), len(sr), added)
	}
	dr.Hosts = s.CachedResults.Sorted()

	if err := s.Persistence(); err != nil {
		log.Warnf("保存结果到数据库失败: %v", err)
	}

	if err := WriteResults(s.Output, dr.Hosts); err != nil {
		return dr, err
	}

	if dr.Empty() {
		s.Printer.Nothing(s.RootDomain)
	} else {
		s.Printer.Render(dr.Hosts)
		s.Printer.Status("%d subdomain(s) saved to %s", len(dr.Hosts), s.Output)
	}
	log.Info("子域名搜集结束")
	return dr, nil
}
