// Package config loads and validates a project's pecco.toml manifest.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"golang.org/x/mod/semver"

	"pecco/report"
)

// ManifestFileName is the fixed manifest filename a project root must carry.
const ManifestFileName = "pecco.toml"

// CompilerVersion is the version this binary reports itself as, used to
// warn when a manifest targets a mismatched compiler.
const CompilerVersion = "v0.1.0"

// tomlManifest mirrors pecco.toml's on-disk shape.
type tomlManifest struct {
	Name          string `toml:"name"`
	PeccoVersion  string `toml:"pecco-version"`
	EntryFile     string `toml:"entry"`
	OutputName    string `toml:"output"`
}

// Manifest is the validated, in-memory form of a project's pecco.toml.
type Manifest struct {
	Name       string
	EntryFile  string
	OutputName string
	AbsPath    string
}

// Load reads and validates the manifest rooted at dir, a project directory
// (the driver passes the directory of the input file, as given).  Version
// mismatches are warnings, not failures, since this compiler carries no
// compatibility-breaking changes yet to guard against.
func Load(dir string, rep *report.Reporter) (*Manifest, bool) {
	path := filepath.Join(dir, ManifestFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		rep.Record(report.Diagnostic{Stage: "config", Message: fmt.Sprintf("unable to open manifest at '%s': %s", path, err.Error())})
		return nil, false
	}

	tm := &tomlManifest{}
	if err := toml.Unmarshal(buf, tm); err != nil {
		rep.Record(report.Diagnostic{Stage: "config", Message: fmt.Sprintf("error parsing manifest at '%s': %s", path, err.Error())})
		return nil, false
	}

	m := &Manifest{AbsPath: dir}
	if !validate(m, tm, rep) {
		return nil, false
	}
	return m, true
}

func validate(m *Manifest, tm *tomlManifest, rep *report.Reporter) bool {
	if tm.Name == "" {
		rep.Record(report.Diagnostic{Stage: "config", Message: "manifest is missing a 'name' field"})
		return false
	}
	if !isValidIdentifier(tm.Name) {
		rep.Record(report.Diagnostic{Stage: "config", Message: "manifest 'name' must be a valid identifier"})
		return false
	}
	if tm.EntryFile == "" {
		rep.Record(report.Diagnostic{Stage: "config", Message: "manifest is missing an 'entry' field"})
		return false
	}

	if tm.PeccoVersion != "" {
		want := tm.PeccoVersion
		if want[0] != 'v' {
			want = "v" + want
		}
		if semver.IsValid(want) && semver.Compare(want, CompilerVersion) != 0 {
			rep.Record(report.Diagnostic{
				Stage:   "config",
				Message: fmt.Sprintf("manifest targets pecco %s, this binary is %s", tm.PeccoVersion, CompilerVersion),
				Warning: true,
			})
		}
	}

	m.Name = tm.Name
	m.EntryFile = tm.EntryFile
	m.OutputName = tm.OutputName
	if m.OutputName == "" {
		m.OutputName = tm.Name
	}
	return true
}

func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
