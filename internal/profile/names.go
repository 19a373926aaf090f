package profile

import (
	"path/filepath"
	"strings"
)

const unsafeNameChars = `\/:*?"<>|`

// SanitizeName strips characters that cannot appear in a profile file name.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeNameChars, r) || r < 0x20 {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}

// FileName is the on-disk file name for a broadcast profile.
func FileName(name string) string {
	return name + Ext
}

// PathIn joins dir with the profile's file name.
func PathIn(dir, name string) string {
	return filepath.Join(dir, FileName(name))
}

// NameFromFile derives the profile name from a file name, reporting whether it
// carries the profile extension.
func NameFromFile(file string) (string, bool) {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, Ext) {
		return "", false
	}
	name := strings.TrimSuffix(base, ext)
	return name, name != ""
}
