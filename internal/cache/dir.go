// Package cache implements spec §4.H's per-board on-disk cache: Folder.idx
// thread metadata, differential DAT fetch/reconstruction, and dat-replace.ini
// substitution rules.
package cache

import (
	"hash/fnv"
	"path/filepath"
	"strconv"
)

// BoardDir returns a stable, injective filesystem directory for boardURL
// under dataDir. The slug is an FNV-1a hash of the URL rather than the URL
// itself, so directory names stay short and filesystem-safe regardless of
// how deeply nested or unicode-heavy the board's path is.
func BoardDir(dataDir, boardURL string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(boardURL))
	return filepath.Join(dataDir, strconv.FormatUint(h.Sum64(), 36))
}
