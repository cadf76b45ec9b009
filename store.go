package wikimcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// An ArtifactStore is a single-writer key/value view of the per-article
// output namespace. Values are the text of the single content block of
// a tool response.
type ArtifactStore interface {
	// Get returns the text stored under name, with ok false when
	// nothing is stored there yet.
	Get(name string) (text string, ok bool, err error)
	Put(name, text string) error
}

// A MemoryStore is an ArtifactStore held in a map.
type MemoryStore map[string]string

func (m MemoryStore) Get(name string) (string, bool, error) {
	t, ok := m[name]
	return t, ok, nil
}

func (m MemoryStore) Put(name, text string) error {
	m[name] = text
	return nil
}

// Names lists the stored names in order.
func (m MemoryStore) Names() []string {
	rv := make([]string, 0, len(m))
	for k := range m {
		rv = append(rv, k)
	}
	sort.Strings(rv)
	return rv
}

// A FileStore keeps each artifact as <dir>/<name>.json holding an MCP
// tool response.
type FileStore struct {
	dir string
}

// NewFileStore gets a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// storedResponse mirrors the JSON of an mcp.CallToolResult far enough
// to read the text back.
type storedResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (s *FileStore) Get(name string) (string, bool, error) {
	p, err := s.path(name)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var r storedResponse
	if err := json.Unmarshal(b, &r); err != nil {
		return "", false, fmt.Errorf("reading artifact %v: %w", p, err)
	}
	if len(r.Content) == 0 {
		return "", true, nil
	}
	return r.Content[0].Text, true, nil
}

func (s *FileStore) Put(name, text string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return writeJSON(p, toolResponse(text))
}

func toolResponse(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

// writeJSON writes v as indented JSON, replacing path atomically.
func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
