package config

import "time"

// ZapretConfig is the top-level configuration structure for zapretctl.
type ZapretConfig struct {
	// WorkDir is where the zapret sources are cloned and built. Relative
	// paths are resolved against the current working directory.
	WorkDir string `yaml:"workDir"`
	// RepoURL is the git repository cloned into WorkDir.
	RepoURL string `yaml:"repoURL"`
	// SystemDir is where install_easy.sh installs zapret.
	SystemDir string `yaml:"systemDir"`
	// SystemConfigPath is the shell-syntax config holding NFQWS_OPT.
	SystemConfigPath string `yaml:"systemConfigPath"`
	// StrategyStorePath is the persisted strategy list.
	StrategyStorePath string `yaml:"strategyStorePath"`

	Paths     PathsConfig     `yaml:"paths"`
	Elevation ElevationConfig `yaml:"elevation"`
	Service   ServiceConfig   `yaml:"service"`
	DNSCrypt  DNSCryptConfig  `yaml:"dnscrypt"`

	// Conflicts lists process names that must not be running before setup.
	Conflicts []string `yaml:"conflicts"`
	// InstallAnswers are piped line by line into install_easy.sh.
	InstallAnswers []string `yaml:"installAnswers"`

	// PollInterval is the controller tick.
	PollInterval time.Duration `yaml:"pollInterval"`
	// NetworkSettleDelay is waited after NetworkManager is restarted.
	NetworkSettleDelay time.Duration `yaml:"networkSettleDelay"`
}

// PathsConfig holds the fixed temporary file locations.
type PathsConfig struct {
	InstallAnswers string `yaml:"installAnswers"`
	WrapperScript  string `yaml:"wrapperScript"`
	InstallerJob   string `yaml:"installerJob"`
	ConfigStaging  string `yaml:"configStaging"`
}

// ElevationConfig controls how privileged commands are launched.
type ElevationConfig struct {
	// Command is prepended to privileged invocations (pkexec by default).
	// An empty command runs them directly, e.g. when already root.
	Command string `yaml:"command"`
}

// Enabled reports whether privileged commands go through an elevator.
func (e ElevationConfig) Enabled() bool {
	return e.Command != ""
}

// ServiceConfig names the systemd unit managed by zapretctl.
type ServiceConfig struct {
	Unit string `yaml:"unit"`
}

// DNSCryptConfig locates the dnscrypt-proxy configuration patched during setup.
type DNSCryptConfig struct {
	ConfigPath string `yaml:"configPath"`
}
