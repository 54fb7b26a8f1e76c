// Package outname composes output filenames from a stem, an extension, and
// an ordered list of suffixes inserted between them, the way the command
// line tools build "sample_scaled.bed" or "genome_36bp_1bp_2bp.tbl" names
// from a run's parameters.
package outname

import (
	"path/filepath"
	"strings"
)

// Name builds an output filename as stem + suffixes... + "." + extension.
// It is immutable; Prepend and Append return a new Name rather than
// mutating the receiver, so a base Name can be reused across several
// derived output files.
type Name struct {
	stem      string
	extension string
	suffixes  []string
}

// FromParts builds a Name from an explicit stem and extension. The stem's
// directory and own extension, if any, are stripped first.
func FromParts(stemSrc, extension string) Name {
	return Name{stem: stripExt(stemSrc), extension: extension}
}

// FromFilename splits filename into a stem and extension, falling back to
// defExtension when filename has none. Any directory part of filename is
// dropped from the stem.
func FromFilename(filename, defExtension string) Name {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = defExtension
	} else {
		ext = ext[1:]
	}
	return Name{stem: stripExt(filename), extension: ext}
}

// From dispatches to FromFilename when filename is non-empty, or to
// FromParts(stem, defExtension) otherwise.
func From(stem, filename, defExtension string) Name {
	if filename == "" {
		return FromParts(stem, defExtension)
	}
	return FromFilename(filename, defExtension)
}

func stripExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PrependSuffix returns a Name with suffix inserted immediately after the
// stem, before any previously added suffixes.
func (n Name) PrependSuffix(suffix string) Name {
	suffixes := make([]string, 0, len(n.suffixes)+1)
	suffixes = append(suffixes, suffix)
	suffixes = append(suffixes, n.suffixes...)
	n.suffixes = suffixes
	return n
}

// AppendSuffix returns a Name with suffix added after every previously
// added suffix.
func (n Name) AppendSuffix(suffix string) Name {
	suffixes := make([]string, len(n.suffixes), len(n.suffixes)+1)
	copy(suffixes, n.suffixes)
	n.suffixes = append(suffixes, suffix)
	return n
}

// Filename computes the final output filename: stem, each suffix in
// order, then a '.' and the extension.
func (n Name) Filename() string {
	var b strings.Builder
	b.WriteString(n.stem)
	for _, s := range n.suffixes {
		b.WriteString(s)
	}
	b.WriteByte('.')
	b.WriteString(n.extension)
	return b.String()
}
