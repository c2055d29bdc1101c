package distro

import (
	"bufio"
	"os"
	"strings"

	"zapretctl/pkg/logging"
)

const subsystem = "Distro"

// Unknown is returned when the distribution cannot be determined.
const Unknown = "unknown"

// osReleasePath is a variable so tests can point detection at a fixture.
var osReleasePath = "/etc/os-release"

// Detect returns the lowercase distribution id from /etc/os-release, or
// "unknown". It never fails.
func Detect() string {
	return DetectFrom(osReleasePath)
}

// DetectFrom reads the ID= line of an os-release style file.
func DetectFrom(path string) string {
	f, err := os.Open(path)
	if err != nil {
		logging.Debug(subsystem, "Cannot read %s: %v", path, err)
		return Unknown
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "ID=") {
			continue
		}
		id := strings.ReplaceAll(strings.TrimPrefix(line, "ID="), `"`, "")
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			return Unknown
		}
		return id
	}
	return Unknown
}

// Family groups distribution ids that share a package manager and naming.
type Family string

const (
	FamilyDebian  Family = "debian"
	FamilyArch    Family = "arch"
	FamilyFedora  Family = "fedora"
	FamilySuse    Family = "suse"
	FamilyAlpine  Family = "alpine"
	FamilyVoid    Family = "void"
	FamilyGentoo  Family = "gentoo"
	FamilyUnknown Family = "unknown"
)

var families = map[string]Family{
	"ubuntu":              FamilyDebian,
	"debian":              FamilyDebian,
	"linuxmint":           FamilyDebian,
	"pop":                 FamilyDebian,
	"kali":                FamilyDebian,
	"arch":                FamilyArch,
	"manjaro":             FamilyArch,
	"endeavouros":         FamilyArch,
	"cachyos":             FamilyArch,
	"fedora":              FamilyFedora,
	"opensuse":            FamilySuse,
	"opensuse-tumbleweed": FamilySuse,
	"opensuse-leap":       FamilySuse,
	"suse":                FamilySuse,
	"alpine":              FamilyAlpine,
	"void":                FamilyVoid,
	"gentoo":              FamilyGentoo,
}

// FamilyOf returns the family for a distribution id.
func FamilyOf(id string) Family {
	if f, ok := families[id]; ok {
		return f
	}
	return FamilyUnknown
}
