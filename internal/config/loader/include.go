package loader

import (
	"fmt"
	"path/filepath"
)

// IncludeKey names the directive listing files merged beneath a config file.
const IncludeKey = "@include"

// LoadWithIncludes loads path with l and merges the files named by its
// include directive underneath it, so the including file wins. Relative
// include paths resolve against the including file. Nesting deeper than
// maxDepth is an error, which also stops include cycles.
func LoadWithIncludes(l FileLoader, path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("include depth exceeded for %s", path)
	}

	config, err := l.LoadFrom(path)
	if err != nil || config == nil {
		return config, err
	}

	raw, ok := config[IncludeKey]
	if !ok {
		return config, nil
	}
	delete(config, IncludeKey)

	includes, err := includePaths(raw)
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w", IncludeKey, path, err)
	}

	merged := make(map[string]any)
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		incConfig, err := LoadWithIncludes(l, inc, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", inc, err)
		}
		merged = DeepMerge(merged, incConfig)
	}

	return DeepMerge(merged, config), nil
}

func includePaths(raw any) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		paths := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("must be a string or list of strings, got element %T", item)
			}
			paths = append(paths, s)
		}
		return paths, nil
	default:
		return nil, fmt.Errorf("must be a string or list of strings, got %T", raw)
	}
}
