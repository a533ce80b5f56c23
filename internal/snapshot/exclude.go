package snapshot

import (
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/raoulx24/snaprotate/internal/fs"
)

// excludeFunc compiles gitignore-style patterns into a skip function for
// fs.LinkTree. The stamp file is never excluded.
func excludeFunc(patterns []string) fs.SkipFunc {
	var lines []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			lines = append(lines, p)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	m := ignore.CompileIgnoreLines(lines...)
	return func(rel string, isDir bool) bool {
		if rel == StampFile {
			return false
		}
		if isDir && m.MatchesPath(rel+"/") {
			return true
		}
		return m.MatchesPath(rel)
	}
}
