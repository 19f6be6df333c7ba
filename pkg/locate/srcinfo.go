package locate

import (
	"bufio"
	"strings"
)

// SrcInfoFile is the generated package metadata in a packaging repository.
const SrcInfoFile = ".SRCINFO"

// SrcInfo holds the .SRCINFO fields this package uses. Only the pkgbase
// section is read; per-split-package overrides are ignored.
type SrcInfo struct {
	PkgBase string
	PkgVer  string
	PkgRel  string
	Epoch   string
	URL     string
	Sources []string
}

// ParseSrcInfo parses .SRCINFO content. Architecture specific keys
// (source_x86_64) count as sources.
func ParseSrcInfo(content string) SrcInfo {
	var info SrcInfo
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	inBase := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch {
		case key == "pkgbase":
			info.PkgBase = value
		case key == "pkgname":
			if info.PkgBase == "" {
				info.PkgBase = value
			}
			inBase = false
		case !inBase:
		case key == "pkgver":
			info.PkgVer = value
		case key == "pkgrel":
			info.PkgRel = value
		case key == "epoch":
			info.Epoch = value
		case key == "url":
			info.URL = value
		case key == "source" || strings.HasPrefix(key, "source_"):
			info.Sources = append(info.Sources, value)
		}
	}
	return info
}

// Version renders [epoch:]pkgver-pkgrel.
func (s SrcInfo) Version() string {
	v := s.PkgVer
	if s.PkgRel != "" {
		v += "-" + s.PkgRel
	}
	if s.Epoch != "" && s.Epoch != "0" {
		v = s.Epoch + ":" + v
	}
	return v
}

// VCSSource returns the first source fetched with git.
func (s SrcInfo) VCSSource() (string, bool) {
	for _, src := range s.Sources {
		if IsVCSSource(src) {
			return src, true
		}
	}
	return "", false
}

// TagPin returns the #tag= pin of the first VCS source.
func (s SrcInfo) TagPin() (string, bool) {
	src, ok := s.VCSSource()
	if !ok {
		return "", false
	}
	return SourceTag(src)
}

// SourceTag extracts the #tag= fragment of a source entry
// (...kmod.git#tag=v34.1?signed → v34.1).
func SourceTag(src string) (string, bool) {
	_, frag, ok := strings.Cut(src, "#")
	if !ok {
		return "", false
	}
	for _, part := range strings.FieldsFunc(frag, func(r rune) bool { return r == '&' || r == '?' }) {
		if tag, found := strings.CutPrefix(part, "tag="); found && tag != "" {
			return tag, true
		}
	}
	return "", false
}

// Metadata builds locator input from a parsed .SRCINFO.
func (s SrcInfo) Metadata(descriptor string) Metadata {
	return Metadata{DeclaredURL: s.URL, SourceURLs: s.Sources, Descriptor: descriptor}
}
