package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a lexicon.
type File struct {
	Name       string     `yaml:"name"`
	Categories []Category `yaml:"categories"`
}

// Parse builds a Lexicon from YAML.
func Parse(data []byte) (*Lexicon, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("parse lexicon: no categories")
	}
	return New(f.Name, f.Categories)
}

// Load reads a YAML lexicon file.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return Parse(data)
}

// File returns the compiled lexicon in its YAML form.
func (l *Lexicon) File() File {
	return File{Name: l.name, Categories: l.Categories()}
}
