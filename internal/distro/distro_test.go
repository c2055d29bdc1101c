package distro

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFrom(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "quoted", content: "NAME=\"Ubuntu\"\nID=ubuntu\nID_LIKE=debian\n", want: "ubuntu"},
		{name: "double quoted and upper", content: "ID=\"Fedora\"\n", want: "fedora"},
		{name: "id_like ignored", content: "ID_LIKE=arch\nID=cachyos\n", want: "cachyos"},
		{name: "padded", content: "ID=  opensuse-tumbleweed  \n", want: "opensuse-tumbleweed"},
		{name: "missing", content: "NAME=Something\n", want: Unknown},
		{name: "empty value", content: "ID=\n", want: Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "os-release")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			assert.Equal(t, tt.want, DetectFrom(path))
		})
	}
}

func TestDetect_UnreadableFile(t *testing.T) {
	original := osReleasePath
	defer func() { osReleasePath = original }()

	osReleasePath = filepath.Join(t.TempDir(), "missing")
	assert.Equal(t, Unknown, Detect())
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilyDebian, FamilyOf("linuxmint"))
	assert.Equal(t, FamilyArch, FamilyOf("endeavouros"))
	assert.Equal(t, FamilySuse, FamilyOf("opensuse-leap"))
	assert.Equal(t, FamilyUnknown, FamilyOf("nixos"))
}

func TestPackageName(t *testing.T) {
	tests := []struct {
		id, dep, want string
	}{
		{"ubuntu", "gcc", "build-essential"},
		{"alpine", "gcc", "build-base"},
		{"fedora", "gcc", "gcc"},
		{"kali", "zlib", "zlib1g-dev"},
		{"manjaro", "zlib", "zlib"},
		{"gentoo", "zlib", "zlib-devel"},
		{"debian", "libnetfilter_queue", "libnetfilter-queue-dev libnfnetlink-dev"},
		{"nixos", "libnetfilter_queue", "libnetfilter_queue-devel"},
		{"alpine", "libmnl", "libmnl-dev"},
		{"opensuse", "libcap", "libcap-devel"},
		{"void", "dig", "bind-utils"},
		{"fedora", "dig", "bind-utils"},
		{"alpine", "dig", "bind-tools"},
		{"cachyos", "dig", "bind"},
		{"ubuntu", "dig", "dnsutils"},
		{"ubuntu", "ipset", "ipset"},
	}
	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.dep, func(t *testing.T) {
			assert.Equal(t, tt.want, PackageName(tt.id, tt.dep))
		})
	}
}

func TestInstallCommand(t *testing.T) {
	tests := []struct {
		id, dep string
		want    []string
	}{
		{"arch", "git", []string{"pacman", "-S", "--noconfirm", "git"}},
		{"fedora", "zlib", []string{"dnf", "install", "-y", "zlib-devel"}},
		{"suse", "curl", []string{"zypper", "--non-interactive", "in", "curl"}},
		{"alpine", "gcc", []string{"apk", "add", "build-base"}},
		{"void", "make", []string{"xbps-install", "-S", "-y", "make"}},
		{"gentoo", "ipset", []string{"emerge", "ipset"}},
		{"pop", "libnetfilter_queue", []string{"apt-get", "install", "-y", "libnetfilter-queue-dev", "libnfnetlink-dev"}},
		{"unknown", "git", nil},
	}
	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.dep, func(t *testing.T) {
			assert.Equal(t, tt.want, InstallCommand(tt.id, tt.dep))
		})
	}
}

func TestRefreshCommand(t *testing.T) {
	assert.Equal(t, []string{"apt-get", "update"}, RefreshCommand("ubuntu"))
	assert.Equal(t, []string{"pacman", "-Sy"}, RefreshCommand("arch"))
	assert.Equal(t, []string{"emerge", "--sync"}, RefreshCommand("gentoo"))
	assert.Nil(t, RefreshCommand("nixos"))
}

func TestInstallCommands(t *testing.T) {
	cmds, err := InstallCommands("alpine", []string{"git", "zlib"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"apk", "add", "git"}, {"apk", "add", "zlib-dev"}}, cmds)

	cmds, err = InstallCommands("nixos", []string{"git", "zlib"})
	assert.Empty(t, cmds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
}
