package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-slots/pkg/models"
)

// ErrNoItems is returned when a file or directory yields no records.
var ErrNoItems = errors.New("no records found")

// File is the on-disk layout of a dataset.
type File struct {
	Records []models.Record `yaml:"records"`
}

// Decode reads a dataset document. Both a top-level list and a mapping with
// a records key are accepted. Records without an id get a fresh UUID.
func Decode(data []byte) ([]models.Record, error) {
	var records []models.Record
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("-")) {
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
	} else {
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
		records = f.Records
	}
	if len(records) == 0 {
		return nil, ErrNoItems
	}
	for i := range records {
		normalize(&records[i])
	}
	return records, nil
}

// Encode renders records as a dataset document.
func Encode(records []models.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(File{Records: records}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads a dataset file.
func Load(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Save writes records to path, creating parent directories.
func Save(path string, records []models.Record) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func normalize(r *models.Record) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Title == "" {
		r.Title = r.ID
	}
	r.Path = strings.Trim(filepath.ToSlash(r.Path), "/")
}

//---------------------
// Markdown notes
//---------------------

var frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n?`)

// noteHeader is the subset of note frontmatter turned into a record.
type noteHeader struct {
	ID      string             `yaml:"id"`
	Title   string             `yaml:"title"`
	Type    string             `yaml:"type,omitempty"`
	Tags    []string           `yaml:"tags,flow"`
	Created string             `yaml:"created"`
	Fields  map[string]float64 `yaml:"fields,omitempty"`
}

const timestampLayout = "2006-01-02 15:04:05"

// ParseNote turns one markdown document into a record. rel is the note's
// slash separated path below the scanned directory. Documents without
// frontmatter use the file name as title.
func ParseNote(rel string, content []byte) (models.Record, error) {
	r := models.Record{Path: strings.Trim(filepath.ToSlash(rel), "/")}
	if m := frontmatterPattern.FindSubmatch(content); m != nil {
		var h noteHeader
		if err := yaml.Unmarshal(m[1], &h); err != nil {
			return r, fmt.Errorf("failed to parse frontmatter of %s: %w", rel, err)
		}
		r.ID = h.ID
		r.Title = h.Title
		r.Kind = models.Kind(h.Type)
		r.Tags = h.Tags
		r.Fields = h.Fields
		if h.Created != "" {
			if t, err := time.ParseInLocation(timestampLayout, h.Created, time.Local); err == nil {
				r.CreatedAt = t
			}
		}
	}
	if r.Title == "" {
		r.Title = strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	}
	normalize(&r)
	return r, nil
}

// LoadNotes walks dir and converts every markdown file into a record.
func LoadNotes(dir string) ([]models.Record, error) {
	var records []models.Record
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		r, err := ParseNote(rel, content)
		if err != nil {
			return err
		}
		if r.CreatedAt.IsZero() {
			if info, err := d.Info(); err == nil {
				r.CreatedAt = info.ModTime()
			}
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoItems)
	}
	return records, nil
}
