package config

import "time"

const (
	DefaultRepoURL           = "https://github.com/bol-van/zapret.git"
	DefaultWorkDir           = "zapret"
	DefaultSystemDir         = "/opt/zapret"
	DefaultSystemConfigPath  = "/opt/zapret/config"
	DefaultStrategyStorePath = "strategies.json"
	DefaultElevationCommand  = "pkexec"
	DefaultServiceUnit       = "zapret"
	DefaultDNSCryptConfig    = "/etc/dnscrypt-proxy/dnscrypt-proxy.toml"

	DefaultPollInterval       = 50 * time.Millisecond
	DefaultNetworkSettleDelay = 5 * time.Second
)

// DefaultConflicts are the processes that interfere with zapret: other DPI
// bypass tools, VPN clients and an already running zapret.
var DefaultConflicts = []string{
	"tpws",
	"nfqws",
	"dvtws",
	"winws",
	"goodbyedpi",
	"openvpn",
	"wireguard",
	"zapret",
}

// DefaultInstallAnswers are the interactive answers install_easy.sh expects
// for a non-interactive nfqws install.
var DefaultInstallAnswers = []string{"Y", "Y", "N", "1", "N", "N", "Y", "N", "", ""}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() ZapretConfig {
	return ZapretConfig{
		WorkDir:           DefaultWorkDir,
		RepoURL:           DefaultRepoURL,
		SystemDir:         DefaultSystemDir,
		SystemConfigPath:  DefaultSystemConfigPath,
		StrategyStorePath: DefaultStrategyStorePath,
		Paths: PathsConfig{
			InstallAnswers: "/tmp/zapret_install_inputs.txt",
			WrapperScript:  "/tmp/zapret_wrapper_run.sh",
			InstallerJob:   "/tmp/zapret_installer_job.sh",
			ConfigStaging:  "/tmp/zapret_config_new",
		},
		Elevation: ElevationConfig{Command: DefaultElevationCommand},
		Service:   ServiceConfig{Unit: DefaultServiceUnit},
		DNSCrypt:  DNSCryptConfig{ConfigPath: DefaultDNSCryptConfig},

		Conflicts:      append([]string(nil), DefaultConflicts...),
		InstallAnswers: append([]string(nil), DefaultInstallAnswers...),

		PollInterval:       DefaultPollInterval,
		NetworkSettleDelay: DefaultNetworkSettleDelay,
	}
}
