// Package source — file filtering rules.
// Decides which directory entries are message files.
package source

import (
	"path/filepath"
	"strings"
)

// messageExtensions are the file extensions treated as single messages.
var messageExtensions = map[string]bool{
	".eml": true,
}

// IsMessageFile reports whether name looks like a saved message file.
// Hidden files (editor backups, .DS_Store and the like) are skipped.
func IsMessageFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return messageExtensions[strings.ToLower(filepath.Ext(base))]
}

// IsMboxFile reports whether path names an mbox archive.
func IsMboxFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".mbox" || ext == ".mbx"
}
