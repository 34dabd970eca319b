package i18n

import (
	"sort"
	"strings"
)

// Nest turns dotted keys into a nested map:
// {"quote.step1.title": "x"} becomes {"quote": {"step1": {"title": "x"}}}.
// Keys are applied in sorted order; when a key would need a leaf and a branch
// at the same path, the first one applied wins and the other is dropped.
func Nest(flat map[string]string) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := map[string]any{}
	for _, key := range keys {
		parts := strings.Split(key, ".")
		if hasEmpty(parts) {
			continue
		}
		node := root
		ok := true
		for _, p := range parts[:len(parts)-1] {
			next, exists := node[p]
			if !exists {
				child := map[string]any{}
				node[p] = child
				node = child
				continue
			}
			child, isMap := next.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node = child
		}
		if !ok {
			continue
		}
		leaf := parts[len(parts)-1]
		if _, exists := node[leaf]; exists {
			continue
		}
		node[leaf] = flat[key]
	}
	return root
}

func hasEmpty(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return true
		}
	}
	return false
}
