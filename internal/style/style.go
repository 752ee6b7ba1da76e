package style

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// PopupClass is the CSS class carried by the popup window.
const PopupClass = "menubar-popup"

// ContentClass is the CSS class carried by the popup's content widget.
const ContentClass = "menubar-content"

// DefaultName is the file name looked up next to the config file.
const DefaultName = "style.css"

//go:embed default.css
var defaultCSS string

// importRegex matches @import "file.css"; @import 'file.css'; and @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Stylesheet is a resolved CSS document.
type Stylesheet struct {
	Path    string // Empty for the bundled stylesheet
	CSS     string
	ModTime time.Time
}

// Bundled returns the stylesheet compiled into the binary.
func Bundled() *Stylesheet {
	return &Stylesheet{CSS: defaultCSS}
}

// IsBundled reports whether s is the compiled-in stylesheet.
func (s *Stylesheet) IsBundled() bool {
	return s.Path == ""
}

// Load reads the CSS file at path with its imports inlined.
func Load(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Stylesheet{
		Path:    path,
		CSS:     inlineImports(string(data), filepath.Dir(path), nil),
		ModTime: info.ModTime(),
	}, nil
}

// Resolve returns the stylesheet at path, or the bundled one when path is
// empty or missing. Other read errors are returned with the bundled
// stylesheet so callers can log and carry on.
func Resolve(path string) (*Stylesheet, error) {
	if path == "" {
		return Bundled(), nil
	}
	s, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Bundled(), nil
		}
		return Bundled(), err
	}
	return s, nil
}

// Reload re-reads the file if its modification time moved forward and
// reports whether the CSS changed.
func (s *Stylesheet) Reload() (bool, error) {
	if s.IsBundled() {
		return false, nil
	}

	info, err := os.Stat(s.Path)
	if err != nil {
		return false, err
	}
	if !info.ModTime().After(s.ModTime) {
		return false, nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return false, err
	}

	old := s.CSS
	s.CSS = inlineImports(string(data), filepath.Dir(s.Path), nil)
	s.ModTime = info.ModTime()
	return old != s.CSS, nil
}

// inlineImports replaces @import statements with the referenced files,
// resolved relative to baseDir. seen breaks import cycles.
func inlineImports(css, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		sub := importRegex.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}

		target := sub[1]
		if !filepath.IsAbs(target) {
			target = filepath.Join(baseDir, target)
		}
		if seen[target] {
			return "/* circular import skipped: " + sub[1] + " */"
		}
		seen[target] = true

		data, err := os.ReadFile(target)
		if err != nil {
			return "/* import failed: " + sub[1] + " */"
		}
		return "/* imported: " + sub[1] + " */\n" + inlineImports(string(data), filepath.Dir(target), seen)
	})
}
