package cache

import (
	"sort"
	"strings"
)

// Key builds a deterministic cache key for a provider request:
// "<provider>:<path>?<sorted query>". Parameters are sorted so the key is
// stable regardless of map iteration order. Keys never touch the
// filesystem directly (the disk tier hashes them), so no sanitizing or
// length limiting is needed here.
func Key(provider, path string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(provider)
	b.WriteString(":")
	b.WriteString(path)
	if len(params) > 0 {
		parts := make([]string, 0, len(params))
		for k, v := range params {
			parts = append(parts, k+"="+v)
		}
		sort.Strings(parts)
		b.WriteString("?")
		b.WriteString(strings.Join(parts, "&"))
	}
	return b.String()
}
