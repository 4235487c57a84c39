package prompt

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ErrPromptNotFound is returned when no stored prompt matches an id.
var ErrPromptNotFound = errors.New("prompt not found")

// Storage persists one JSON document per prompt under
// {baseDir}/prompts/{category}/{slug}.json, with a .prompt.md
// companion for editors. It is the repository collaborator: it owns
// all I/O and hands the core an in-memory snapshot.
type Storage struct {
	baseDir string
	logger  *slog.Logger
}

// NewStorage creates a storage instance rooted at baseDir.
func NewStorage(baseDir string, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{baseDir: baseDir, logger: logger}
}

// Save persists a prompt as JSON plus a markdown companion. Any
// previously stored files for the same id are removed first, so a
// rename moves the prompt to its new slug.
func (s *Storage) Save(p *Prompt) error {
	if err := validatePromptID(p.ID); err != nil {
		return fmt.Errorf("invalid prompt id: %w", err)
	}
	if !ValidCategory(p.Category) {
		return fmt.Errorf("invalid category: %s", p.Category)
	}

	if err := s.removeFiles(p.ID); err != nil && !errors.Is(err, ErrPromptNotFound) {
		return err
	}

	dir := filepath.Join(s.baseDir, "prompts", p.Category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	jsonPath := filepath.Join(dir, s.fileStem(p)+".json")
	data, err := p.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal prompt: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := s.generateMDFile(p, dir); err != nil {
		return fmt.Errorf("failed to generate MD file: %w", err)
	}
	return nil
}

// Load retrieves a single prompt by id, scanning all category
// directories.
func (s *Storage) Load(promptID string) (*Prompt, error) {
	if err := validatePromptID(promptID); err != nil {
		return nil, fmt.Errorf("invalid prompt id: %w", err)
	}

	for _, category := range Categories {
		dir := filepath.Join(s.baseDir, "prompts", category)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			p, err := s.loadJSON(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			if p.ID == promptID {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPromptNotFound, promptID)
}

// LoadAll reads every stored prompt into a fresh snapshot slice,
// ordered by id for stable iteration. Unparseable records are skipped
// with a warning; a single corrupt file must not abort the load.
func (s *Storage) LoadAll() ([]Prompt, error) {
	var (
		mu      sync.Mutex
		prompts []Prompt
	)

	g := new(errgroup.Group)
	g.SetLimit(8)

	for _, category := range Categories {
		dir := filepath.Join(s.baseDir, "prompts", category)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			g.Go(func() error {
				p, err := s.loadJSON(path)
				if err != nil {
					s.logger.Warn("skipping unreadable prompt record", "path", path, "error", err)
					return nil
				}
				mu.Lock()
				prompts = append(prompts, *p)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(prompts, func(i, j int) bool { return prompts[i].ID < prompts[j].ID })
	return prompts, nil
}

// Delete removes a prompt's JSON and MD files.
func (s *Storage) Delete(promptID string) error {
	if err := validatePromptID(promptID); err != nil {
		return fmt.Errorf("invalid prompt id: %w", err)
	}
	return s.removeFiles(promptID)
}

// removeFiles deletes all stored files for an id across categories.
func (s *Storage) removeFiles(promptID string) error {
	found := false
	for _, category := range Categories {
		dir := filepath.Join(s.baseDir, "prompts", category)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			p, err := s.loadJSON(path)
			if err != nil || p.ID != promptID {
				continue
			}
			if err := os.Remove(path); err == nil {
				found = true
			}
			// Companion file shares the stem; ignore if absent.
			os.Remove(strings.TrimSuffix(path, ".json") + ".prompt.md")
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrPromptNotFound, promptID)
	}
	return nil
}

// generateMDFile writes the .prompt.md companion with YAML
// frontmatter, mirroring the stored record for editor workflows.
func (s *Storage) generateMDFile(p *Prompt, dir string) error {
	frontmatter := map[string]interface{}{
		"id":       p.ID,
		"name":     p.Name,
		"category": p.Category,
		"version":  p.Version,
	}
	if p.Description != "" {
		frontmatter["description"] = p.Description
	}
	if len(p.Tags) > 0 {
		frontmatter["tags"] = p.Tags
	}
	if len(p.Variables) > 0 {
		vars := make([]map[string]interface{}, len(p.Variables))
		for i, spec := range p.Variables {
			v := map[string]interface{}{
				"name":     spec.Name,
				"type":     spec.Type,
				"required": spec.Required,
			}
			if spec.Description != "" {
				v["description"] = spec.Description
			}
			if spec.DefaultValue != nil {
				v["default"] = spec.DefaultValue.String()
			}
			vars[i] = v
		}
		frontmatter["variables"] = vars
	}

	yamlData, err := yaml.Marshal(frontmatter)
	if err != nil {
		return fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	content := fmt.Sprintf("---\n%s---\n\n%s", string(yamlData), p.Content)
	mdPath := filepath.Join(dir, s.fileStem(p)+".prompt.md")
	if err := os.WriteFile(mdPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write MD file: %w", err)
	}
	return nil
}

// fileStem combines the name slug with a short id suffix so prompts
// sharing a display name never collide on disk.
func (s *Storage) fileStem(p *Prompt) string {
	short := p.ID
	if len(short) > 8 {
		short = short[:8]
	}
	slug := Slug(p.Name)
	if slug == "" {
		return short
	}
	return slug + "-" + short
}

func (s *Storage) loadJSON(path string) (*Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	p, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// validatePromptID rejects ids that could escape the storage tree.
func validatePromptID(promptID string) error {
	if promptID == "" {
		return fmt.Errorf("prompt id cannot be empty")
	}
	if strings.Contains(promptID, "..") || strings.ContainsAny(promptID, `/\`) {
		return fmt.Errorf("invalid characters in prompt id")
	}
	return nil
}
