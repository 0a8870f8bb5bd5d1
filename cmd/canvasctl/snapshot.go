package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// snapshotFile is the on-disk form of a node snapshot
type snapshotFile struct {
	Nodes     []canvas.NodeSnapshot `yaml:"nodes" json:"nodes" validate:"required,min=1,dive"`
	Container *containerSize        `yaml:"container,omitempty" json:"container,omitempty"`
}

type containerSize struct {
	Width  float64 `yaml:"width" json:"width" validate:"gt=0"`
	Height float64 `yaml:"height" json:"height" validate:"gt=0"`
}

// readSnapshot loads a snapshot from path, or stdin when path is "-".
// Files ending in .json use the JSON decoder; everything else, stdin included,
// goes through the YAML decoder, which also accepts JSON.
func readSnapshot(path string, stdin io.Reader) (*snapshotFile, error) {
	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer file.Close()
		r = file
	}

	var snap snapshotFile
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.NewDecoder(r).Decode(&snap)
	} else {
		err = yaml.NewDecoder(r).Decode(&snap)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("snapshot %s is empty", path)
		}
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	if err := validate.Struct(&snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	if _, err := canvas.BuildGraph(snap.Nodes); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// size returns the container, falling back to fallback when the file has none
func (s *snapshotFile) size(fallback valueobjects.Size) valueobjects.Size {
	if s.Container == nil {
		return fallback
	}
	return valueobjects.Size{Width: s.Container.Width, Height: s.Container.Height}
}

// writeOutput encodes v to w as yaml or json
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
