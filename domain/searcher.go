package domain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultSearchAPI     = "https://www.google.com/search"
	defaultSearchNum     = 100
	defaultSearchTimeout = 10 * time.Second
	defaultSearchPause   = 2 * time.Second

	// 搜索结果页对外链接的跳转前缀
	redirectPrefix = "/url?q="
)

// DomainSearcher 通过搜索引擎搜集子域名
type DomainSearcher struct {
	*DomainModuleOption
	*DomainSearcherOption

	Client *http.Client
	wait   func(ctx context.Context, d time.Duration)
}

// DomainSearcherOption 用户配置项
type DomainSearcherOption struct {
	SearchAPI string            `desc:"搜索接口地址"`
	Num       int               `desc:"期望返回的结果数量"`
	Headers   map[string]string `desc:"请求头"`
	Timeout   time.Duration     `desc:"请求超时"`
	Pause     time.Duration     `desc:"每次搜索后的等待时间"`
}

// CreateDomainSearcher 用来创建DomainSearcher实例的方法, 推荐使用
func CreateDomainSearcher(mo *DomainModuleOption, opt *DomainSearcherOption) (ds *DomainSearcher, err error) {
	if mo == nil {
		mo = &DomainModuleOption{}
	}
	if opt == nil {
		opt = &DomainSearcherOption{}
	}
	ds = &DomainSearcher{
		DomainModuleOption:   mo,
		DomainSearcherOption: opt,
		wait:                 sleepContext,
	}

	if ds.SearchAPI == "" {
		ds.SearchAPI = defaultSearchAPI
	}
	if ds.Num <= 0 {
		ds.Num = defaultSearchNum
	}
	if ds.Timeout <= 0 {
		ds.Timeout = defaultSearchTimeout
	}
	if ds.Pause <= 0 {
		ds.Pause = defaultSearchPause
	}
	if ds.Headers == nil {
		ds.Headers = map[string]string{
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.5359.95 Safari/537.36",
			"Accept":     "*/*",
		}
	}

	ds.Client, err = mo.CreateHTTPClient(ds.Timeout)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (ds *DomainSearcher) Name() string {
	return "searcher"
}

// Run 返回的是子域名前缀, 由Scout补全为完整域名
func (ds *DomainSearcher) Run(ctx context.Context) SubdomainResult {
	return ds.UseGoogle(ctx)
}

// UseGoogle 使用site:语法查询一次搜索引擎, 失败时返回空结果
func (ds *DomainSearcher) UseGoogle(ctx context.Context) (sr SubdomainResult) {
	sr = make(SubdomainResult)
	log := ds.logger()
	defer ds.wait(ctx, ds.Pause)

	q := url.Values{}
	q.Set("q", "site:"+ds.RootDomain)
	q.Set("num", strconv.Itoa(ds.Num))
	api := ds.SearchAPI + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api, nil)
	if err != nil {
		log.Warnf("构造搜索请求失败: %v", err)
		return
	}
	for k, v := range ds.Headers {
		req.Header.Set(k, v)
	}

	res, err := ds.Client.Do(req)
	if err != nil {
		log.Warnf("搜索请求失败: %v", err)
		return
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.Warnf("搜索请求失败: %s", res.Status)
		return
	}

	found, err := ParseSearchResults(res.Body, ds.RootDomain)
	if err != nil {
		log.Warnf("解析搜索结果失败: %v", err)
		return
	}
	log.Debugf("搜索引擎发现了%d个子域名前缀", len(found))
	return found
}

// ParseSearchResults 从搜索结果页面的链接中提取子域名前缀
func ParseSearchResults(r io.Reader, root string) (SubdomainResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	sr := make(SubdomainResult)
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		dest, ok := ExtractDestination(href)
		if !ok {
			return
		}
		if label, ok := ExtractLabel(dest, root); ok {
			sr[label] = struct{}{}
		}
	})
	return sr, nil
}

// ExtractDestination 还原搜索结果链接指向的真实地址
func ExtractDestination(href string) (string, bool) {
	if strings.HasPrefix(href, redirectPrefix) {
		if u, err := url.Parse(href); err == nil {
			dest := u.Query().Get("q")
			return dest, dest != ""
		}
		dest, _, _ := strings.Cut(strings.TrimPrefix(href, redirectPrefix), "&")
		return dest, dest != ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, true
	}
	return "", false
}

// ExtractLabel 从目标地址的主机名中截取根域名之前的部分
func ExtractLabel(dest, root string) (string, bool) {
	if root == "" || !strings.Contains(dest, root) {
		return "", false
	}

	host := hostOf(dest)
	suffix := "." + root
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}
	label := strings.TrimSuffix(host, suffix)
	if label == "" || label == root {
		return "", false
	}
	return label, true
}

// hostOf 返回不带端口的主机名, 没有协议头的地址按//host/path处理
func hostOf(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}
	if u, err := url.Parse(raw); err == nil {
		return u.Hostname()
	}

	_, rest, _ := strings.Cut(raw, "//")
	host, _, _ := strings.Cut(rest, "/")
	host, _, _ = strings.Cut(host, "?")
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return host
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
