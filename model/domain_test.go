package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDomainResults(t *testing.T) {
	s, err := Connect(filepath.Join(t.TempDir(), "subscout.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveDomainResults([]*DomainResult{
		{DomainName: "www.example.com", Source: "searcher", Status: DomainHistory, TaskName: "t1"},
		{DomainName: "api.example.com", Source: "guesser", Status: DomainExternal, TaskName: "t1"},
	}))
	require.NoError(t, s.SaveDomainResults([]*DomainResult{
		{DomainName: "www.example.com", Source: "guesser", Status: DomainExternal, TaskName: "t1"},
		{DomainName: "www.example.com", Source: "searcher", Status: DomainHistory, TaskName: "t2"},
	}))
	require.NoError(t, s.SaveDomainResults(nil))

	drs, err := s.ListDomainResults("t1")
	require.NoError(t, err)
	require.Len(t, drs, 2)
	assert.Equal(t, "api.example.com", drs[0].DomainName)
	assert.Equal(t, "www.example.com", drs[1].DomainName)
	assert.Equal(t, "guesser", drs[1].Source)
	assert.Equal(t, DomainExternal, drs[1].Status)

	drs, err = s.ListDomainResults("t2")
	require.NoError(t, err)
	assert.Len(t, drs, 1)
}

func TestDomainStatusString(t *testing.T) {
	assert.Equal(t, "external", DomainExternal.String())
	assert.Equal(t, "history", DomainHistory.String())
	assert.Equal(t, "unknown", DomainStatus(42).String())
}

func TestConnectBadPath(t *testing.T) {
	_, err := Connect(filepath.Join(t.TempDir(), "missing", "dir", "subscout.db"))
	assert.Error(t, err)
}
