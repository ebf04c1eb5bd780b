// Package store persists generated artefacts as markdown files.
//
// Each saved artefact is a standalone .md file carrying the project inputs
// as sections, the generated content (reasoning markers included), and a
// footer recording the model and temperature that produced it, so the
// directory stays browsable with any markdown viewer.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/diegetic/artefact"
)

const (
	fileExt         = ".md"
	timeLayout      = "060102_1504"
	footerLayout    = "2006-01-02 15:04:05"
	descrNameLength = 30
)

// Entry describes one saved artefact.
type Entry struct {
	// Path is the absolute or directory-relative file path.
	Path string

	// Fields are the project inputs recorded in the file's sections.
	Fields artefact.ProjectFields

	// Provider and Model identify the backend that produced the content.
	Provider string
	Model    string

	// Temperature is the sampling temperature recorded in the footer.
	Temperature float64

	// Created is the file's modification time.
	Created time.Time

	// Size is the file size in bytes.
	Size int64

	// Content is the generated text, reasoning markers intact.
	Content string
}

// Store reads and writes artefacts under a single directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artefact directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a generation outcome to disk and returns the path of the new
// file.
//
// The file records every project field, the full generated text including
// any reasoning block, and the provider, model, and temperature that
// produced it. The filename is the minute-resolution timestamp followed by
// the first 30 characters of the project description, so repeated saves
// within the same minute for the same project overwrite each other.
func (s *Store) Save(req *artefact.GenerationRequest, result *artefact.GenerationResult, temperature float64) (string, error) {
	now := time.Now()
	name := fmt.Sprintf("%s_%s%s",
		now.Format(timeLayout),
		sanitizeFilename(cleanDescription(req.Fields.Description)),
		fileExt)
	path := filepath.Join(s.dir, name)

	var b strings.Builder
	b.WriteString("# Diegetic Artefact Generation results:\n\n")
	fmt.Fprintf(&b, "## Project\n%s\n\n", req.Fields.Description)
	fmt.Fprintf(&b, "## Location\n%s\n\n", req.Fields.Location)
	fmt.Fprintf(&b, "## Date/Timeframe\n%s\n\n", req.Fields.Date)
	fmt.Fprintf(&b, "## User Personas\n%s\n\n", req.Fields.Personas)
	fmt.Fprintf(&b, "## Key Themes\n%s\n\n", req.Fields.Themes)
	fmt.Fprintf(&b, "## Generated Artefact\n%s\n\n", result.Text())
	b.WriteString("---\n")
	fmt.Fprintf(&b, "*Generated on %s*\n", now.Format(footerLayout))
	fmt.Fprintf(&b, "*Model: %s/%s (temperature: %g)*\n", result.Provider, result.Model, temperature)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to save artefact: %w", err)
	}
	return path, nil
}

// Load reads a saved artefact back, splitting the project sections, the
// generated content, and the model footer.
func (s *Store) Load(path string) (*Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artefact %s: %w", path, err)
	}

	entry := parseEntry(string(raw))
	entry.Path = path

	if info, err := os.Stat(path); err == nil {
		entry.Created = info.ModTime()
		entry.Size = info.Size()
	}
	return entry, nil
}

// List returns every saved artefact, newest first by file modification time.
// Unreadable files are skipped.
func (s *Store) List() ([]*Entry, error) {
	names, err := filepath.Glob(filepath.Join(s.dir, "*"+fileExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list artefact directory: %w", err)
	}

	entries := make([]*Entry, 0, len(names))
	for _, name := range names {
		entry, err := s.Load(name)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Created.After(entries[j].Created)
	})
	return entries, nil
}

// Section and footer patterns. Sections run to the next blank line; the
// model footer is a single asterisk-wrapped line.
var (
	sectionRe = regexp.MustCompile(`(?s)## (Project|Location|Date/Timeframe|User Personas|Key Themes)\n(.*?)\n\n`)
	// Greedy so horizontal rules inside the content do not cut it short;
	// the match anchors on the trailing footer.
	contentRe = regexp.MustCompile(`(?s)## Generated Artefact\n(.*)\n\n---\n\*Generated on `)
	modelRe   = regexp.MustCompile(`\*Model: ([^/*]*)/(.+?) \(temperature: ([0-9.]+)\)\*`)
)

func parseEntry(raw string) *Entry {
	entry := &Entry{}

	for _, m := range sectionRe.FindAllStringSubmatch(raw, -1) {
		value := strings.TrimSpace(m[2])
		switch m[1] {
		case "Project":
			entry.Fields.Description = value
		case "Location":
			entry.Fields.Location = value
		case "Date/Timeframe":
			entry.Fields.Date = value
		case "User Personas":
			entry.Fields.Personas = value
		case "Key Themes":
			entry.Fields.Themes = value
		}
	}

	if m := contentRe.FindStringSubmatch(raw); m != nil {
		entry.Content = strings.TrimSpace(m[1])
	} else {
		// Not one of ours; keep the whole file readable as content.
		entry.Content = strings.TrimSpace(raw)
	}

	if m := modelRe.FindStringSubmatch(raw); m != nil {
		entry.Provider = m[1]
		entry.Model = m[2]
		if temp, err := strconv.ParseFloat(m[3], 64); err == nil {
			entry.Temperature = temp
		}
	}

	return entry
}

// cleanDescription collapses a multi-line description to one line and trims
// it to the filename length budget.
func cleanDescription(description string) string {
	joined := strings.Join(strings.Fields(description), " ")
	runes := []rune(joined)
	if len(runes) > descrNameLength {
		runes = runes[:descrNameLength]
	}
	return strings.TrimSpace(string(runes))
}

// sanitizeFilename strips characters that are invalid in filenames and
// replaces spaces with underscores.
func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		}
		return r
	}, name)
	return strings.ReplaceAll(name, " ", "_")
}
