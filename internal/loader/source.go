package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"InclusionSentinel/internal/model"
)

// Source reads a named dataset.
type Source interface {
	Load(ctx context.Context, name string) (*model.Dataset, error)
	Name() string
}

// extensions are tried in order when a name has none.
var extensions = []string{".yaml", ".yml"}

func decode(data []byte, name string) (*model.Dataset, error) {
	var ds model.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", name, err)
	}
	return &ds, nil
}

// FileSource reads YAML datasets from a directory.
type FileSource struct {
	BaseDir string
}

func (s *FileSource) Name() string { return "file" }

// find resolves name against BaseDir, trying the known extensions when name
// has none of its own.
func (s *FileSource) find(name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) && s.BaseDir != "" {
		path = filepath.Join(s.BaseDir, name)
	}
	candidates := []string{path}
	if filepath.Ext(path) == "" {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, path+ext)
		}
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("dataset %s not found in %q: %w", name, s.BaseDir, os.ErrNotExist)
}

func (s *FileSource) Load(ctx context.Context, name string) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.find(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decode(data, path)
}

// HTTPSource fetches YAML datasets published under a base URL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource creates an HTTPSource, optionally routed through proxyURL.
func NewHTTPSource(baseURL, proxyURL string) *HTTPSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Load(ctx context.Context, name string) (*model.Dataset, error) {
	u := s.BaseURL + "/" + strings.TrimLeft(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/yaml")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: status %d: %s", u, resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	return decode(data, u)
}

// MockSource returns a fixed dataset for development and testing.
type MockSource struct {
	Dataset *model.Dataset
	Err     error
	Calls   int
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Load(_ context.Context, _ string) (*model.Dataset, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Dataset == nil {
		return &model.Dataset{}, nil
	}
	return m.Dataset, nil
}
