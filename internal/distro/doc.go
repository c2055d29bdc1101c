// Package distro detects the Linux distribution and resolves the packages
// and package manager invocations needed to build zapret on it.
//
// Lookups are static tables keyed by distribution family. Unknown families
// get generic -devel package guesses but no install command, so callers can
// skip the dependency instead of failing.
package distro
