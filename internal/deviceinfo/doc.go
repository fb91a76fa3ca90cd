// Package deviceinfo reports information about the host machine and its
// network attachment: operator name, platform, host name, terminal size,
// a stable device ID and the kind of network in use.
package deviceinfo
