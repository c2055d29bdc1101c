// Package config loads zapretctl configuration.
//
// Configuration lives in a single directory, ~/.config/zapretctl by default,
// overridable with the --config-path flag. The only file read is config.yaml;
// when it is missing every setting keeps its default.
//
// # Example
//
//	workDir: ./zapret
//	repoURL: https://github.com/bol-van/zapret.git
//	systemConfigPath: /opt/zapret/config
//	elevation:
//	  command: pkexec
//	conflicts: [tpws, nfqws, openvpn]
//	pollInterval: 50ms
//
// Relative workDir and strategyStorePath values are resolved against the
// current directory at load time.
//
// Load and validation failures are returned as *ConfigurationError, which
// carries the offending file and actionable suggestions.
package config
