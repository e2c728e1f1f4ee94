package domain

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// DomainModuler 子域名搜集模块
type DomainModuler interface {
	Name() string
	Run(ctx context.Context) SubdomainResult
}

// DomainModuleOption 各模块共用的配置项
type DomainModuleOption struct {
	RootDomain string
	Proxy      string `desc:"HTTP代理"`
	Insecure   bool   `desc:"跳过TLS证书校验"`

	Log *logrus.Logger
}

// CreateHTTPClient 按模块配置创建带超时的http.Client
func (o *DomainModuleOption) CreateHTTPClient(timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if o.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if o.Proxy != "" {
		uri, err := url.Parse(o.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", o.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(uri)
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

func (o *DomainModuleOption) logger() *logrus.Logger {
	if o == nil {
		return Log
	}
	return loggerOr(o.Log)
}
