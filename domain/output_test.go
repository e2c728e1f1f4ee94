package domain

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdomains.txt")
	hosts := []string{"api.example.com", "mail.example.com", "www.example.com"}
	require.NoError(t, WriteResults(path, hosts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasSuffix(content, "\n"))
	assert.False(t, strings.HasSuffix(content, "\n\n"))
	assert.ElementsMatch(t, hosts, strings.Split(strings.TrimSuffix(content, "\n"), "\n"))
}

func TestWriteResultsOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteResults(path, []string{"a.example.com", "b.example.com", "c.example.com"}))
	require.NoError(t, WriteResults(path, []string{"d.example.com"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "d.example.com\n", string(data))

	require.NoError(t, WriteResults(path, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestWriteResultsBadPath(t *testing.T) {
	err := WriteResults(filepath.Join(t.TempDir(), "missing", "out.txt"), []string{"a.example.com"})
	assert.Error(t, err)
}

func TestPrinter(t *testing.T) {
	var out, errw bytes.Buffer
	p := NewPrinter(&out, &errw, true)

	p.Render([]string{"a.example.com", "b.example.com"})
	p.Status("%s: %d", "searcher", 2)
	p.Nothing("example.com")

	assert.Equal(t, "[+] a.example.com\n[+] b.example.com\n", out.String())
	assert.Contains(t, errw.String(), "[*] searcher: 2\n")
	assert.Contains(t, errw.String(), "[!] no subdomains found for example.com\n")
}

func TestPrinterProgress(t *testing.T) {
	var errw bytes.Buffer
	p := NewPrinter(&bytes.Buffer{}, &errw, true)

	bar := p.Progress(3, "probing")
	var progress Progress = bar
	require.NoError(t, progress.Add(1))
	require.NoError(t, progress.Add(2))
	assert.True(t, bar.IsFinished())
}
