package deviceinfo

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/phonecore/phonecore/internal/logging"
)

// OperatorEnvVar overrides the reported operator name
const OperatorEnvVar = "PHONECORE_OPERATOR"

// UnknownOperator is reported when no operator is configured
const UnknownOperator = "unknown"

// deviceNamespace scopes name-based device IDs to this application
var deviceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/phonecore/phonecore/device"))

// Info describes the machine the client runs on
type Info struct {
	OperatorName     string `json:"operator_name" yaml:"operator_name"`
	PlatformVersion  string `json:"platform_version" yaml:"platform_version"`
	DeviceBrand      string `json:"device_brand" yaml:"device_brand"`
	ScreenResolution string `json:"screen_resolution" yaml:"screen_resolution"` // columns x rows, empty without a terminal
	DeviceID         string `json:"device_id" yaml:"device_id"`
}

// Snapshot collects the current device information
func Snapshot() Info {
	host, err := os.Hostname()
	if err != nil {
		logging.Debug("Hostname unavailable", zap.Error(err))
		host = ""
	}

	return Info{
		OperatorName:     OperatorName(),
		PlatformVersion:  PlatformVersion(),
		DeviceBrand:      host,
		ScreenResolution: ScreenResolution(),
		DeviceID:         DeviceID(host, hardwareAddrs()),
	}
}

// OperatorName returns $PHONECORE_OPERATOR, or "unknown" when unset
func OperatorName() string {
	if name := strings.TrimSpace(os.Getenv(OperatorEnvVar)); name != "" {
		return name
	}
	return UnknownOperator
}

// PlatformVersion describes the OS, architecture and Go runtime
func PlatformVersion() string {
	return fmt.Sprintf("%s/%s %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// ScreenResolution returns the terminal size as "<cols>x<rows>", or "" when
// stdout is not a terminal.
func ScreenResolution() string {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return ""
	}
	width, height, err := term.GetSize(fd)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%dx%d", width, height)
}

// DeviceID derives a stable identifier from the host name and hardware
// addresses. The same inputs always produce the same ID.
func DeviceID(host string, hwAddrs []string) string {
	sorted := append([]string(nil), hwAddrs...)
	sort.Strings(sorted)
	name := host + "|" + strings.Join(sorted, ",")
	return uuid.NewSHA1(deviceNamespace, []byte(name)).String()
}

func hardwareAddrs() []string {
	ifaces, err := net.Interfaces()
	if err != nil {
		logging.Debug("Interface listing failed", zap.Error(err))
		return nil
	}
	var addrs []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		addrs = append(addrs, iface.HardwareAddr.String())
	}
	return addrs
}
