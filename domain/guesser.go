package domain

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultGuessTimeout = 5 * time.Second

// CommonSubdomains 高频子域名前缀
var CommonSubdomains = []string{"www", "mail", "ftp", "admin", "blog", "dev", "test", "api", "secure"}

// Progress 进度上报, 每探测完一个前缀加一
type Progress interface {
	Add(num int) error
}

// DomainGuesser 通过字典猜测并探测子域名
type DomainGuesser struct {
	*DomainModuleOption
	*DomainGuesserOption

	Client *http.Client
}

// DomainGuesserOption 用户配置项
type DomainGuesserOption struct {
	Words       []string      `desc:"待探测的前缀, 为空时使用CommonSubdomains"`
	Timeout     time.Duration `desc:"单次探测超时"`
	Concurrency int           `desc:"同时探测的数量, 默认逐个探测"`
	Progress    Progress      `desc:"进度上报"`
}

// ProbeResult 单个前缀的探测结果
type ProbeResult struct {
	Label      string
	Host       string
	StatusCode int
	Err        error
}

// Found 只有请求成功且状态码为200才算发现
func (r ProbeResult) Found() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

// CreateDomainGuesser 用来创建DomainGuesser实例的方法, 推荐使用
func CreateDomainGuesser(mo *DomainModuleOption, opt *DomainGuesserOption) (dg *DomainGuesser, err error) {
	if mo == nil {
		mo = &DomainModuleOption{}
	}
	if opt == nil {
		opt = &DomainGuesserOption{}
	}
	dg = &DomainGuesser{
		DomainModuleOption:  mo,
		DomainGuesserOption: opt,
	}

	if len(dg.Words) == 0 {
		dg.Words = CommonSubdomains
	}
	if dg.Timeout <= 0 {
		dg.Timeout = defaultGuessTimeout
	}
	if dg.Concurrency < 1 {
		dg.Concurrency = 1
	}

	dg.Client, err = mo.CreateHTTPClient(dg.Timeout)
	if err != nil {
		return nil, err
	}
	return dg, nil
}

func (dg *DomainGuesser) Name() string {
	return "guesser"
}

// Run 返回状态码为200的完整子域名
func (dg *DomainGuesser) Run(ctx context.Context) SubdomainResult {
	sr := make(SubdomainResult)
	for _, host := range Discovered(dg.UseDict(ctx)) {
		sr[host] = struct{}{}
	}
	return sr
}

// UseDict 使用高频率的字典进行子域名猜测, 结果顺序与字典一致
func (dg *DomainGuesser) UseDict(ctx context.Context) []ProbeResult {
	words := uniqueWords(dg.Words)
	results := make([]ProbeResult, len(words))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dg.Concurrency)
	for i, word := range words {
		i, word := i, word
		g.Go(func() error {
			results[i] = dg.doGuess(gctx, word)
			if dg.Progress != nil {
				_ = dg.Progress.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	dg.logger().Debugf("字典探测完成, 共%d个前缀, 发现%d个子域名", len(words), len(Discovered(results)))
	return results
}

func (dg *DomainGuesser) doGuess(ctx context.Context, label string) (pr ProbeResult) {
	pr = ProbeResult{
		Label: label,
		Host:  label + "." + dg.RootDomain,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+pr.Host, nil)
	if err != nil {
		pr.Err = err
		return
	}
	res, err := dg.Client.Do(req)
	if err != nil {
		pr.Err = err
		dg.logger().Debugf("探测%v失败: %v", pr.Host, err)
		return
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	pr.StatusCode = res.StatusCode
	return
}

// Discovered 按探测顺序返回已发现的子域名
func Discovered(results []ProbeResult) (hosts []string) {
	for _, r := range results {
		if r.Found() {
			hosts = append(hosts, r.Host)
		}
	}
	return
}

func uniqueWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
