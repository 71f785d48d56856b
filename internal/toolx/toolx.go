// Package toolx contains the file-level plumbing shared by the sourcefrag
// CLI subcommands.
package toolx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/cranefold/sourcefrag/source"
	"github.com/cranefold/sourcefrag/srcmap"
)

// LoadSource reads a generated file and wraps it as a Source. A sibling
// "<path>.map" file, when present, is parsed and attached.
func LoadSource(path string) (source.Source, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	mapPath := path + ".map"
	raw, err := os.ReadFile(mapPath)
	if os.IsNotExist(err) {
		log.Debugf("No source map next to %q.", path)
		return source.NewRawStringSource(string(text)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", mapPath, err)
	}
	m, err := srcmap.ReadFrom(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", mapPath, err)
	}
	log.Debugf("Attached source map %q (%d sources).", mapPath, len(m.Sources))
	return source.NewSourceMapSource(string(text), filepath.Base(path), m), nil
}

// WriteOutput writes the source text to path and its map, if any, to
// path+".map" with a trailing sourceMappingURL comment on the text.
func WriteOutput(path string, s source.Source, opts *source.MapOptions) error {
	text, m, err := s.SourceAndMap(opts)
	if err != nil {
		return err
	}
	if m != nil {
		mapPath := path + ".map"
		f, err := os.Create(mapPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", mapPath, err)
		}
		defer f.Close()
		if m.File == "" {
			m.File = filepath.Base(path)
		}
		if err := m.WriteTo(f); err != nil {
			return fmt.Errorf("writing %s: %w", mapPath, err)
		}
		text += "//# sourceMappingURL=" + filepath.Base(mapPath) + "\n"
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Fingerprint returns the hex sha256 fingerprint of a source's content and
// map, computed through the source's own UpdateHash.
func Fingerprint(s source.Source) (string, error) {
	h := sha256.New()
	if err := s.UpdateHash(h); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
