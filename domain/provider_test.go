package domain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*DomainProvider, *test.Hook) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	l, hook := test.NewNullLogger()
	dp, err := CreateDomainProvider(
		&DomainModuleOption{RootDomain: "example.com", Log: l},
		&DomainProviderOption{CertSpotterAPI: srv.URL},
	)
	require.NoError(t, err)
	return dp, hook
}

func TestUseCertSpotter(t *testing.T) {
	dp, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "example.com", q.Get("domain"))
		assert.Equal(t, "true", q.Get("include_subdomains"))
		assert.Equal(t, "dns_names", q.Get("expand"))
		_, _ = w.Write([]byte(`[
			{"id":"1","dns_names":["example.com","*.example.com","a.example.com"]},
			{"id":"2","dns_names":["b.example.com","a.example.com","evil.com","notexample.com"]}
		]`))
	})

	sr := dp.Run(context.Background())
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, sr.Sorted())
}

func TestUseCertSpotterFailure(t *testing.T) {
	dp, hook := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	sr := dp.UseCertSpotter(context.Background())
	assert.Empty(t, sr)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "429")
}

func TestUseCertSpotterBadJSON(t *testing.T) {
	dp, hook := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	})

	assert.Empty(t, dp.UseCertSpotter(context.Background()))
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "decode response")
}
