package build

import (
	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
)

// Family is the coarse platform grouping used to pick filename suffixes and
// default archive formats.
type Family string

const (
	FamilyWindows Family = "windows"
	FamilyUnix    Family = "unix"
)

// Target is one cross-compilation target triple.
type Target struct {
	Triple string
	Family Family
}

// Targets is the fixed list of supported target triples. The order here is
// the order used for builds and manifests.
var Targets = []Target{
	{"x86_64-pc-windows-gnu", FamilyWindows},
	{"x86_64-pc-windows-msvc", FamilyWindows},
	{"aarch64-unknown-linux-gnu", FamilyUnix},
	{"x86_64-unknown-linux-gnu", FamilyUnix},
}

// LookupTarget resolves a triple against the supported target list.
func LookupTarget(triple string) (Target, bool) {
	for _, target := range Targets {
		if target.Triple == triple {
			return target, true
		}
	}
	return Target{}, false
}

// ExeSuffix returns the executable filename suffix for the target.
func (t Target) ExeSuffix() string {
	if t.Family == FamilyWindows {
		return ".exe"
	}
	return ""
}

// ArchiveFormat returns the archive format configured for this tool on this
// target's platform family.
func (t Target) ArchiveFormat(tool config.ToolSpec) string {
	if t.Family == FamilyWindows {
		return tool.WindowsFormat
	}
	return tool.NonWindowsFormat
}
