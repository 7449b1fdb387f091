package export

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// myanmarFonts are normalized (lowercase, no separators) file name fragments
// of common Myanmar fonts.
var myanmarFonts = []string{"pyidaungsu", "notosansmyanmar", "myanmartext", "myanmarmn", "padauk"}

var errFontFound = errors.New("font found")

// DefaultFontDirs lists the usual font directories of the host.
func DefaultFontDirs() []string {
	var dirs []string

	switch runtime.GOOS {
	case "windows":
		dirs = append(dirs, `C:\Windows\Fonts`)
	case "darwin":
		dirs = append(dirs, "/Library/Fonts", "/System/Library/Fonts")
	}

	dirs = append(dirs, "/usr/share/fonts", "/usr/local/share/fonts")

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, "Library", "Fonts"),
			filepath.Join(home, ".fonts"),
			filepath.Join(home, ".local", "share", "fonts"),
		)
	}

	return dirs
}

func normalizeFontName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '.':
			return -1
		}

		return r
	}, strings.ToLower(name))
}

// FindMyanmarFont walks dirs in order and returns the first TrueType font
// whose file name looks like a Myanmar font. Missing directories are skipped.
func FindMyanmarFont(dirs []string) (string, bool) {
	var found string

	for _, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subdirectories are not fatal.
				return fs.SkipDir
			}

			if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".ttf") {
				return nil
			}

			name := normalizeFontName(strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())))
			for _, candidate := range myanmarFonts {
				if strings.Contains(name, candidate) {
					found = path
					return errFontFound
				}
			}

			return nil
		})
		if errors.Is(err, errFontFound) {
			return found, true
		}
	}

	return "", false
}
