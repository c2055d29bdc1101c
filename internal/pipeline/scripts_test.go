package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallerJob_Render(t *testing.T) {
	script, err := InstallerJob{
		CleanPath:       "/w/zapret",
		RefreshCommand:  []string{"apt-get", "update"},
		InstallCommands: [][]string{{"apt-get", "install", "-y", "git"}},
		DNSCryptConfig:  "/etc/dnscrypt-proxy/dnscrypt-proxy.toml",
	}.Render()
	require.NoError(t, err)

	assert.Equal(t, `#!/bin/sh
set -e
exec 2>&1
echo "STATUS:CLEANING"
rm -rf '/w/zapret'
echo "STATUS:INSTALLING_DEPS"
apt-get update
apt-get install -y git
echo "STATUS:CONFIGURING"
if [ -f '/etc/dnscrypt-proxy/dnscrypt-proxy.toml' ]; then
  sed -i "40s/^listen_addresses = \['127\.0\.0\.1:53'\]$/listen_addresses = ['127.0.0.1:53', '[::1]:53']/" '/etc/dnscrypt-proxy/dnscrypt-proxy.toml'
fi
echo "STATUS:FINALIZING"
systemctl restart NetworkManager
systemctl enable dnscrypt-proxy.service
systemctl start dnscrypt-proxy.service
`, script)
}

func TestInstallerJob_RenderMinimal(t *testing.T) {
	script, err := InstallerJob{DNSCryptConfig: "/d.toml"}.Render()
	require.NoError(t, err)

	assert.NotContains(t, script, "STATUS:CLEANING")
	assert.NotContains(t, script, "STATUS:INSTALLING_DEPS")
	assert.Contains(t, script, "exec 2>&1\necho \"STATUS:CONFIGURING\"\n")
}

func TestEasyInstallWrapper_Render(t *testing.T) {
	script, err := EasyInstallWrapper{
		WorkDir:      "/home/u/zapret",
		Script:       "/home/u/zapret/install_easy.sh",
		Answers:      "/tmp/answers",
		SystemConfig: "/opt/zapret/config",
	}.Render()
	require.NoError(t, err)

	assert.Equal(t, `#!/bin/sh
export ZAPRET_BASE='/home/u/zapret'
'/home/u/zapret/install_easy.sh' < '/tmp/answers'
exit_code=$?
if [ $exit_code -eq 0 ]; then
sed -i 's/^NFQWS_ENABLE=.*/NFQWS_ENABLE=1/' '/opt/zapret/config'
fi
exit $exit_code
`, script)
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/opt/zapret/config", want: `'/opt/zapret/config'`},
		{in: "/home/u/$HOME/`id`/a\\b", want: "'/home/u/$HOME/`id`/a\\b'"},
		{in: "/tmp/it's", want: `'/tmp/it'\''s'`},
		{in: "", want: `''`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, shellQuote(tt.in))
		})
	}
}

func TestInstallerJob_RenderKeepsPathsLiteral(t *testing.T) {
	script, err := InstallerJob{CleanPath: "/w/$(reboot)", DNSCryptConfig: "/d.toml"}.Render()
	require.NoError(t, err)
	assert.Contains(t, script, "rm -rf '/w/$(reboot)'\n")
}

func TestAnswersFile(t *testing.T) {
	assert.Equal(t, "Y\n\nN\n", answersFile([]string{"Y", "", "N"}))
}
