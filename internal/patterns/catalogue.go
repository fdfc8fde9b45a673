package patterns

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/coregx/coregex"
	"gopkg.in/yaml.v3"
)

//go:embed shapes
var embeddedShapes embed.FS

// OpKind identifies one of the four array-helper operations a signature
// helper object is assembled from.
type OpKind string

const (
	OpReverse          OpKind = "reverse"
	OpSliceFrom        OpKind = "slice"
	OpSpliceDropPrefix OpKind = "splice"
	OpSwapFirstAndNth  OpKind = "swap"
)

type ShapeTemplate struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Regex string `yaml:"regex"`
}

type ShapeFile struct {
	Name     string          `yaml:"name"`
	Version  string          `yaml:"version"`
	Category string          `yaml:"category"`
	Shapes   []ShapeTemplate `yaml:"shapes"`
}

type CompiledShape struct {
	ID          string
	Kind        OpKind
	Regex       *coregex.Regexp
	RegexString string
	Mutex       *sync.Mutex // Protects Regex from concurrent access (lazy DFA)
}

type shapeLoader struct {
	shapes []CompiledShape
	mu     sync.RWMutex
	loaded bool
}

var globalLoader = &shapeLoader{}

// LoadShapes parses the embedded YAML catalogue and compiles every operation
// classifier. New obfuscation variants are added by appending entries to the
// catalogue, not by touching the matching code.
func LoadShapes() ([]CompiledShape, error) {
	globalLoader.mu.Lock()
	defer globalLoader.mu.Unlock()

	if globalLoader.loaded {
		return globalLoader.shapes, nil
	}

	var all []CompiledShape
	var loadErrors []string

	err := fs.WalkDir(embeddedShapes, "shapes", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		data, err := embeddedShapes.ReadFile(path)
		if err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: read error: %v", path, err))
			return nil
		}

		var file ShapeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: parse error: %v", path, err))
			return nil
		}

		for _, st := range file.Shapes {
			compiled, err := compileShape(st)
			if err != nil {
				loadErrors = append(loadErrors, fmt.Sprintf("%s/%s: %v", filepath.Base(path), st.ID, err))
				continue
			}
			all = append(all, compiled)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk shapes directory: %w", err)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no shapes loaded, errors: %v", loadErrors)
	}

	globalLoader.shapes = all
	globalLoader.loaded = true

	return all, nil
}

func compileShape(st ShapeTemplate) (CompiledShape, error) {
	re, err := coregex.Compile(st.Regex)
	if err != nil {
		return CompiledShape{}, fmt.Errorf("invalid regex: %w", err)
	}

	kind := OpKind(st.Kind)
	switch kind {
	case OpReverse, OpSliceFrom, OpSpliceDropPrefix, OpSwapFirstAndNth:
	default:
		return CompiledShape{}, fmt.Errorf("unknown operation kind %q", st.Kind)
	}

	return CompiledShape{
		ID:          st.ID,
		Kind:        kind,
		Regex:       re,
		RegexString: st.Regex,
		Mutex:       &sync.Mutex{},
	}, nil
}
