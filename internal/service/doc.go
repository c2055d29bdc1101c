// Package service reports and controls the zapret systemd unit.
//
// Status is read over the systemd D-Bus API and falls back to
// `systemctl is-active` when the bus is unavailable. Start, stop and restart
// go through the elevated systemctl so they work for unprivileged users.
package service
