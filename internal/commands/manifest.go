package commands

import (
	"bytes"
	"fmt"
	"io"

	"unilang/internal/version"
	"unilang/pkg/unitypes"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manifest is a document declaring command definitions. Routines are linked by each
// definition's routine_link, or by its full name when no link is given.
type Manifest struct {
	Version  string                       `yaml:"version,omitempty"`
	Requires string                       `yaml:"requires,omitempty"`
	Commands []unitypes.CommandDefinition `yaml:"commands"`
}

// ParseManifest decodes and schema-checks a YAML or JSON manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("manifest is empty")
	}
	if err := ValidateManifestDocument(doc); err != nil {
		return nil, err
	}

	var manifest Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if manifest.Requires != "" {
		if err := version.CheckConstraint(manifest.Requires); err != nil {
			return nil, fmt.Errorf("manifest requires %s: %w", manifest.Requires, err)
		}
	}
	return &manifest, nil
}

// LoadManifest reads a manifest from rd and registers its commands. Nothing is
// registered unless every definition is accepted.
func (r *Registry) LoadManifest(rd io.Reader) (int, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return 0, fmt.Errorf("failed to read manifest: %w", err)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return 0, err
	}

	staging := r.Clone()
	for _, def := range manifest.Commands {
		if err := staging.Register(def, nil); err != nil {
			return 0, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range manifest.Commands {
		if r.taken(def.FullName()) {
			return 0, unitypes.NewErrorData(unitypes.ErrCodeCommandAlreadyExists, "command %s already registered", def.FullName())
		}
	}
	for _, def := range manifest.Commands {
		fullName := def.FullName()
		r.definitions[fullName] = staging.definitions[fullName]
		for alias, target := range staging.aliases {
			if target == fullName {
				r.aliases[alias] = target
			}
		}
	}

	r.logger.Debug("Loaded manifest", "commands", len(manifest.Commands), "version", manifest.Version)
	return len(manifest.Commands), nil
}

// LoadManifestFile loads a manifest file from fs.
func (r *Registry) LoadManifestFile(fs afero.Fs, path string) (int, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	n, err := r.LoadManifest(f)
	if err != nil {
		return 0, fmt.Errorf("manifest %s: %w", path, err)
	}
	return n, nil
}
