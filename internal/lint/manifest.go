package lint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// checkManifest validates <docs_dir>/<manifest> when present. Every entry
// under "docs" must be an object whose "path" names an existing file relative
// to the lint root. A manifest without a "docs" object has nothing to check.
func (l *Linter) checkManifest(root, docsDir string) []Problem {
	rel := docsDir + "/" + l.cfg.GetManifest()
	abs := filepath.Join(root, filepath.FromSlash(rel))

	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return []Problem{{File: rel, Message: fmt.Sprintf("failed to read: %v", err)}}
	}

	var manifest any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return []Problem{{File: rel, Message: fmt.Sprintf("invalid JSON: %v", err)}}
	}

	top, ok := manifest.(map[string]any)
	if !ok {
		return nil
	}
	docs, ok := top["docs"].(map[string]any)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var problems []Problem
	for _, key := range keys {
		entry, ok := docs[key].(map[string]any)
		if !ok {
			problems = append(problems, Problem{File: rel, Message: fmt.Sprintf("docs.%s must be an object", key)})
			continue
		}
		p := ""
		if v, ok := entry["path"]; ok && v != nil {
			p = strings.TrimSpace(fmt.Sprint(v))
		}
		if p == "" {
			problems = append(problems, Problem{File: rel, Message: fmt.Sprintf("docs.%s.path is required", key)})
			continue
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(p))); err != nil {
			problems = append(problems, Problem{File: rel, Message: fmt.Sprintf("docs.%s.path not found: %s", key, p)})
		}
	}
	return problems
}
