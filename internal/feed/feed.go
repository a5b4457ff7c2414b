package feed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ssbor/jobmap/internal/entities"
)

// Summary carries the metadata block the feed builder writes next to the
// offers. All fields are optional; older feed files carry none of them.
type Summary struct {
	Tag     string `json:"tag"`
	Source  string `json:"source"`
	BuiltAt string `json:"built_at"`
	Count   int    `json:"count"`
}

type Employer struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Document is one feed file on disk. Current files put offers under
// "offers", older ones under "last_offers"; both shapes stay readable.
type Document struct {
	Summary      Summary          `json:"summary"`
	TopEmployers []Employer       `json:"top_employers"`
	Offers       []entities.Offer `json:"offers"`
	LastOffers   []entities.Offer `json:"last_offers"`
}

// AllOffers returns the offer list regardless of which field carried it.
func (d *Document) AllOffers() []entities.Offer {
	if len(d.Offers) > 0 {
		return d.Offers
	}
	return d.LastOffers
}

// Store reads feed documents from a directory of <tag>.json files.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Load(tag string) (*Document, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, tag+".json"))
	if err != nil {
		return nil, errors.Wrapf(err, "can't read feed for tag %v", tag)
	}

	var doc Document
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "can't parse feed for tag %v", tag)
	}
	return &doc, nil
}

// Tags lists the tags available in the feed directory.
func (s *Store) Tags() ([]string, error) {
	glob, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, path := range glob {
		tags = append(tags, strings.TrimSuffix(filepath.Base(path), ".json"))
	}
	return tags, nil
}
