package gamepath

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
)

// Roots parses the Steam library manifest at path and returns its library
// roots in manifest order.
func Roots(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ParseLibraryRoots(f)
}

// ParseLibraryRoots extracts the library roots from a libraryfolders.vdf
// document.
//
// Entries are taken in index order ("0", "1", ...), followed by any other
// keys. The final entry is dropped when it is not a group, which is where
// Steam keeps metadata such as "contentstatsid". A group contributes its
// "path" value; in the older flat format a numbered entry is the path itself.
func ParseLibraryRoots(r io.Reader) ([]string, error) {
	doc, err := vdf.NewParser(r).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	var folders map[string]interface{}
	for key, value := range doc {
		if strings.EqualFold(key, "libraryfolders") {
			folders, _ = value.(map[string]interface{})
			break
		}
	}
	if folders == nil {
		return nil, ErrNoLibraryFolders
	}

	keys := orderedKeys(folders)
	if n := len(keys); n > 0 {
		if _, isGroup := folders[keys[n-1]].(map[string]interface{}); !isGroup {
			keys = keys[:n-1]
		}
	}

	roots := make([]string, 0, len(keys))
	for _, key := range keys {
		switch value := folders[key].(type) {
		case map[string]interface{}:
			if path, ok := value["path"].(string); ok && path != "" {
				roots = append(roots, path)
			}
		case string:
			if _, isIndex := libraryIndex(key); isIndex && value != "" {
				roots = append(roots, value)
			}
		}
	}

	return roots, nil
}

// orderedKeys returns numeric keys in ascending order, then the remaining
// keys sorted alphabetically. The parser returns a map, so declaration order
// is lost: the "trailing entry" dropped by ParseLibraryRoots is the last key
// in this order, not the last one written. Real manifests hold a single
// metadata key (contentstatsid), so the two agree.
func orderedKeys(m map[string]interface{}) []string {
	var indexed, named []string
	for key := range m {
		if _, ok := libraryIndex(key); ok {
			indexed = append(indexed, key)
		} else {
			named = append(named, key)
		}
	}

	sort.Slice(indexed, func(i, j int) bool {
		a, _ := libraryIndex(indexed[i])
		b, _ := libraryIndex(indexed[j])
		return a < b
	})
	sort.Strings(named)

	return append(indexed, named...)
}

// libraryIndex parses a library entry key such as "0" or "12".
func libraryIndex(key string) (int, bool) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 || strconv.Itoa(n) != key {
		return 0, false
	}
	return n, true
}
