// Package profile loads named conversion presets from CUE, YAML or
// JSON files. A profile names only the settings it overrides, so
// presets stay small and compose with flags:
//
//	tsv:
//	  separator: "\t"
//	  process-headers: true
//
//	strict:
//	  empty-fields: true
//	  comments: "#"
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/encoding/yaml"

	"github.com/shapestone/shape-csvxml/pkg/csvxml"
)

// Profile is one named preset of conversion settings. Every field is
// optional; Apply only overrides what the profile names.
type Profile struct {
	Headers     *bool   `yaml:"process-headers,omitempty" json:"process-headers,omitempty"`
	MaxRecords  *int    `yaml:"max-records,omitempty" json:"max-records,omitempty"`
	Encoding    *string `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	Separator   *string `yaml:"separator,omitempty" json:"separator,omitempty"`
	Escape      *string `yaml:"escape,omitempty" json:"escape,omitempty"`
	BufferSize  *int    `yaml:"buffer-size,omitempty" json:"buffer-size,omitempty"`
	EmptyFields *bool   `yaml:"empty-fields,omitempty" json:"empty-fields,omitempty"`
	FieldNames  *bool   `yaml:"field-names,omitempty" json:"field-names,omitempty"`
	Comments    *string `yaml:"comments,omitempty" json:"comments,omitempty"`
}

// Load reads named profiles from a file or directory.
//
// For .cue files and directories CUE's load.Instances is used, which
// supports packages whose files import each other. YAML and JSON files
// are parsed directly. The document must be a mapping of profile name
// to settings.
func Load(path string) (map[string]Profile, error) {
	ctx := cuecontext.New()

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	var val cue.Value

	if fileInfo.IsDir() || strings.HasSuffix(strings.ToLower(path), ".cue") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path: %w", err)
		}

		cfg := &load.Config{
			Dir:       filepath.Dir(absPath),
			DataFiles: true,
		}

		args := []string{absPath}
		if fileInfo.IsDir() {
			args = []string{path}
		}

		instances := load.Instances(args, cfg)
		if len(instances) == 0 {
			return nil, fmt.Errorf("no instances loaded from %s", path)
		}
		inst := instances[0]
		if inst.Err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", inst.Err)
		}

		val = ctx.BuildInstance(inst)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			val = ctx.CompileBytes(data)
		default:
			// YAML, or anything we can treat as such
			file, err := yaml.Extract("", data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse YAML: %w", err)
			}
			val = ctx.BuildFile(file)
		}
	}

	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("failed to build profiles: %w", err)
	}

	profiles := map[string]Profile{}
	if err := val.Decode(&profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}

	return profiles, nil
}

// Apply overlays the profile onto base and validates the result.
func (p Profile) Apply(base csvxml.Options) (csvxml.Options, error) {
	opts := base

	if p.Headers != nil {
		opts.Headers = *p.Headers
	}
	if p.MaxRecords != nil {
		opts.MaxRecords = *p.MaxRecords
	}
	if p.Encoding != nil {
		opts.Encoding = *p.Encoding
	}
	if p.Separator != nil {
		c, err := oneRune("separator", *p.Separator)
		if err != nil {
			return csvxml.Options{}, err
		}
		opts.Separator = c
	}
	if p.Escape != nil {
		c, err := oneRune("escape", *p.Escape)
		if err != nil {
			return csvxml.Options{}, err
		}
		opts.Escape = c
	}
	if p.BufferSize != nil {
		opts.BufferSize = *p.BufferSize
	}
	if p.EmptyFields != nil {
		opts.EmptyFields = *p.EmptyFields
	}
	if p.FieldNames != nil {
		opts.FieldNames = *p.FieldNames
	}
	if p.Comments != nil {
		opts.Comments = *p.Comments
	}

	if err := opts.Validate(); err != nil {
		return csvxml.Options{}, err
	}
	return opts, nil
}

func oneRune(field, value string) (rune, error) {
	c, size := utf8.DecodeRuneInString(value)
	if value == "" || size != len(value) || (c == utf8.RuneError && size == 1) {
		return 0, &csvxml.OptionsError{Field: field, Message: "must be exactly one character"}
	}
	return c, nil
}
