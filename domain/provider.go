package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultCertSpotterAPI  = "https://api.certspotter.com/v1/issuances"
	defaultProviderTimeout = 30 * time.Second
)

// DomainProvider 从三方信息提供商获取子域名数据
type DomainProvider struct {
	*DomainModuleOption
	*DomainProviderOption

	Client *http.Client
}

type DomainProviderOption struct {
	CertSpotterAPI string
	Timeout        time.Duration
}

type certSpotterIssuance struct {
	DNSNames []string `json:"dns_names"`
}

// CreateDomainProvider 用来创建DomainProvider实例的方法, 推荐使用
func CreateDomainProvider(mo *DomainModuleOption, opt *DomainProviderOption) (dp *DomainProvider, err error) {
	if mo == nil {
		mo = &DomainModuleOption{}
	}
	if opt == nil {
		opt = &DomainProviderOption{}
	}
	dp = &DomainProvider{
		DomainModuleOption:   mo,
		DomainProviderOption: opt,
	}
	if dp.CertSpotterAPI == "" {
		dp.CertSpotterAPI = defaultCertSpotterAPI
	}
	if dp.Timeout <= 0 {
		dp.Timeout = defaultProviderTimeout
	}

	dp.Client, err = mo.CreateHTTPClient(dp.Timeout)
	if err != nil {
		return nil, err
	}
	return dp, nil
}

func (dp *DomainProvider) Name() string {
	return "provider"
}

func (dp *DomainProvider) Run(ctx context.Context) SubdomainResult {
	return dp.UseCertSpotter(ctx)
}

// UseCertSpotter 利用证书透明度查询公开的子域名
func (dp *DomainProvider) UseCertSpotter(ctx context.Context) SubdomainResult {
	sr := make(SubdomainResult)
	log := dp.logger()

	q := url.Values{}
	q.Set("domain", dp.RootDomain)
	q.Set("include_subdomains", "true")
	q.Set("expand", "dns_names")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dp.CertSpotterAPI+"?"+q.Encode(), nil)
	if err != nil {
		log.Warnf("CertSpotter失败: %v", err)
		return sr
	}

	issuances, err := dp.doRequest(req)
	if err != nil {
		log.Warnf("CertSpotter失败: %v", err)
		return sr
	}

	for _, is := range issuances {
		for _, name := range is.DNSNames {
			name = strings.TrimPrefix(strings.TrimSpace(name), "*.")
			if name == dp.RootDomain || !strings.HasSuffix(name, "."+dp.RootDomain) {
				continue
			}
			sr[name] = struct{}{}
		}
	}
	log.Debugf("使用CertSpotter发现了%d域名", len(sr))
	return sr
}

func (dp *DomainProvider) doRequest(req *http.Request) ([]certSpotterIssuance, error) {
	res, err := dp.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var issuances []certSpotterIssuance
	if err := json.NewDecoder(res.Body).Decode(&issuances); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return issuances, nil
}
