package distro

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// BinaryDependencies are installed only when `which` cannot find them.
var BinaryDependencies = []string{"git", "curl", "ipset", "iptables", "make", "gcc", "dig", "dnscrypt-proxy"}

// LibraryDependencies have no binary to probe and are always requested.
var LibraryDependencies = []string{"zlib", "libnetfilter_queue", "libmnl", "libcap"}

// ErrUnsupported is returned for distributions without a known package
// manager.
var ErrUnsupported = errors.New("no package manager known for this distribution")

// packageNames maps a dependency to its package per family. The empty family
// key is the fallback for families not listed.
var packageNames = map[string]map[Family]string{
	"gcc": {
		FamilyDebian: "build-essential",
		FamilyAlpine: "build-base",
		"":           "gcc",
	},
	"zlib": {
		FamilyDebian: "zlib1g-dev",
		FamilyFedora: "zlib-devel",
		FamilyAlpine: "zlib-dev",
		FamilyArch:   "zlib",
		"":           "zlib-devel",
	},
	"libnetfilter_queue": {
		FamilyDebian: "libnetfilter-queue-dev libnfnetlink-dev",
		FamilyFedora: "libnetfilter_queue-devel libnfnetlink-devel",
		FamilyAlpine: "libnetfilter_queue-dev libnfnetlink-dev",
		FamilyArch:   "libnetfilter_queue libnfnetlink",
		"":           "libnetfilter_queue-devel",
	},
	"libmnl": {
		FamilyDebian: "libmnl-dev",
		FamilyFedora: "libmnl-devel",
		FamilyAlpine: "libmnl-dev",
		FamilyArch:   "libmnl",
		"":           "libmnl-devel",
	},
	"libcap": {
		FamilyDebian: "libcap-dev",
		FamilyFedora: "libcap-devel",
		FamilyAlpine: "libcap-dev",
		FamilyArch:   "libcap",
		"":           "libcap-devel",
	},
	"dig": {
		FamilyVoid:   "bind-utils",
		FamilyFedora: "bind-utils",
		FamilyAlpine: "bind-tools",
		FamilyArch:   "bind",
		"":           "dnsutils",
	},
}

var installPrefixes = map[Family][]string{
	FamilyArch:   {"pacman", "-S", "--noconfirm"},
	FamilyFedora: {"dnf", "install", "-y"},
	FamilySuse:   {"zypper", "--non-interactive", "in"},
	FamilyAlpine: {"apk", "add"},
	FamilyVoid:   {"xbps-install", "-S", "-y"},
	FamilyGentoo: {"emerge"},
	FamilyDebian: {"apt-get", "install", "-y"},
}

var refreshCommands = map[Family][]string{
	FamilyDebian: {"apt-get", "update"},
	FamilyArch:   {"pacman", "-Sy"},
	FamilyFedora: {"dnf", "makecache"},
	FamilySuse:   {"zypper", "refresh"},
	FamilyAlpine: {"apk", "update"},
	FamilyVoid:   {"xbps-install", "-S"},
	FamilyGentoo: {"emerge", "--sync"},
}

// PackageName returns the package, or space separated packages, providing
// dep on distribution id. Dependencies without a remap keep their name.
func PackageName(id, dep string) string {
	names, ok := packageNames[dep]
	if !ok {
		return dep
	}
	if name, ok := names[FamilyOf(id)]; ok {
		return name
	}
	return names[""]
}

// InstallCommand returns the argv installing dep on distribution id. It is
// empty when the distribution's package manager is unknown.
func InstallCommand(id, dep string) []string {
	prefix, ok := installPrefixes[FamilyOf(id)]
	if !ok {
		return nil
	}
	cmd := append([]string(nil), prefix...)
	return append(cmd, strings.Fields(PackageName(id, dep))...)
}

// RefreshCommand returns the argv refreshing package indexes, or nil.
func RefreshCommand(id string) []string {
	if cmd, ok := refreshCommands[FamilyOf(id)]; ok {
		return append([]string(nil), cmd...)
	}
	return nil
}

// InstallCommands resolves install commands for deps. Dependencies that
// cannot be resolved are skipped and reported in the returned error, which
// callers treat as a warning.
func InstallCommands(id string, deps []string) ([][]string, error) {
	var (
		cmds   [][]string
		result *multierror.Error
	)
	for _, dep := range deps {
		cmd := InstallCommand(id, dep)
		if len(cmd) == 0 {
			result = multierror.Append(result, fmt.Errorf("%s on %s: %w", dep, id, ErrUnsupported))
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds, result.ErrorOrNil()
}
