package candidate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore reads and writes the per-source candidate files that connect
// pipeline phases. Each file holds one JSON array of candidates.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string { return s.dir }

// Path returns the file path for a source or named artifact.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads one source file. A missing file is not an error: it just means
// the source produced nothing this run. Records missing title or company
// are dropped; the second return value reports how many were dropped so
// callers can surface validation noise.
func (s *FileStore) Load(source string) ([]Candidate, int, error) {
	file, err := os.Open(s.Path(source))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open %s candidates: %w", source, err)
	}
	defer file.Close()

	var raw []Candidate
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("decode %s candidates: %w", source, err)
	}

	valid := make([]Candidate, 0, len(raw))
	dropped := 0
	for _, c := range raw {
		if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Company) == "" {
			dropped++
			continue
		}
		c.EnsureID()
		valid = append(valid, c)
	}

	return valid, dropped, nil
}

// LoadAll concatenates the candidate files for every listed source.
func (s *FileStore) LoadAll(sources []string) ([]Candidate, error) {
	var all []Candidate
	for _, source := range sources {
		batch, _, err := s.Load(source)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// Save writes a source file, creating the candidates directory on first use.
func (s *FileStore) Save(source string, candidates []Candidate) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create candidates dir: %w", err)
	}

	if candidates == nil {
		candidates = []Candidate{}
	}

	file, err := os.Create(s.Path(source))
	if err != nil {
		return fmt.Errorf("create %s candidates: %w", source, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(candidates); err != nil {
		return fmt.Errorf("encode %s candidates: %w", source, err)
	}
	return nil
}
