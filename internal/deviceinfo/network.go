package deviceinfo

import (
	"context"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/phonecore/phonecore/internal/logging"
)

// NetworkState is the kind of network the machine is attached to
type NetworkState int

const (
	NetworkNone NetworkState = iota
	NetworkWiFi
	NetworkEthernet
	NetworkCellular
	NetworkOther
)

func (s NetworkState) String() string {
	switch s {
	case NetworkNone:
		return "None"
	case NetworkWiFi:
		return "WiFi"
	case NetworkEthernet:
		return "Ethernet"
	case NetworkCellular:
		return "Cellular"
	default:
		return "Other"
	}
}

// DefaultProbeTarget is the host used to find the outbound interface
const DefaultProbeTarget = "www.baidu.com:80"

// interface name prefixes, checked in order
var namePrefixes = []struct {
	prefix string
	state  NetworkState
}{
	{"wlan", NetworkWiFi},
	{"wlp", NetworkWiFi},
	{"wl", NetworkWiFi},
	{"wifi", NetworkWiFi},
	{"wwan", NetworkCellular},
	{"rmnet", NetworkCellular},
	{"ccmni", NetworkCellular},
	{"ppp", NetworkCellular},
	{"eth", NetworkEthernet},
	{"enp", NetworkEthernet},
	{"eno", NetworkEthernet},
	{"ens", NetworkEthernet},
	{"en", NetworkEthernet},
}

// classifyInterface maps an interface name to a network kind
func classifyInterface(name string) NetworkState {
	lower := strings.ToLower(name)
	for _, p := range namePrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.state
		}
	}
	return NetworkOther
}

// usable reports whether iface is up, not loopback and has an address
func usable(iface net.Interface) bool {
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	addrs, err := iface.Addrs()
	return err == nil && len(addrs) > 0
}

// CurrentNetworkState classifies the first usable interface.
// WiFi and Ethernet are preferred over other kinds.
func CurrentNetworkState() NetworkState {
	ifaces, err := net.Interfaces()
	if err != nil {
		logging.Warn("Interface listing failed", zap.Error(err))
		return NetworkNone
	}
	return stateOf(ifaces, usable)
}

func stateOf(ifaces []net.Interface, isUsable func(net.Interface) bool) NetworkState {
	best := NetworkNone
	for _, iface := range ifaces {
		if !isUsable(iface) {
			continue
		}
		s := classifyInterface(iface.Name)
		if best == NetworkNone || rank(s) < rank(best) {
			best = s
		}
	}
	return best
}

func rank(s NetworkState) int {
	switch s {
	case NetworkWiFi:
		return 0
	case NetworkEthernet:
		return 1
	case NetworkCellular:
		return 2
	default:
		return 3
	}
}

// NetworkAvailable reports whether any usable interface exists
func NetworkAvailable() bool {
	return CurrentNetworkState() != NetworkNone
}

// ResolveNetworkName finds the interface the system would use to reach
// target (host:port) and calls cb with its network kind. It returns
// immediately; cb runs on another goroutine exactly once. cb receives
// "None" when the route cannot be determined.
func ResolveNetworkName(ctx context.Context, target string, cb func(name string)) {
	if target == "" {
		target = DefaultProbeTarget
	}
	go func() {
		cb(resolveNetworkName(ctx, target).String())
	}()
}

func resolveNetworkName(ctx context.Context, target string) NetworkState {
	// a UDP dial selects a route without sending anything
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", target)
	if err != nil {
		logging.Debug("Route lookup failed", zap.String("target", target), zap.Error(err))
		return NetworkNone
	}
	defer func() { _ = conn.Close() }()

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return NetworkOther
	}
	if local.IP.IsLoopback() {
		return NetworkOther
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return NetworkOther
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.Equal(local.IP) {
				logging.Debug("Route resolved",
					zap.String("target", target),
					zap.String("interface", iface.Name),
				)
				return classifyInterface(iface.Name)
			}
		}
	}
	return NetworkOther
}
