package deviceinfo

import (
	"context"
	"net"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestOperatorName(t *testing.T) {
	t.Setenv(OperatorEnvVar, "")
	if got := OperatorName(); got != UnknownOperator {
		t.Errorf("OperatorName() = %q, want %q", got, UnknownOperator)
	}

	t.Setenv(OperatorEnvVar, " China Mobile ")
	if got := OperatorName(); got != "China Mobile" {
		t.Errorf("OperatorName() = %q", got)
	}
}

func TestPlatformVersion(t *testing.T) {
	got := PlatformVersion()
	if !strings.HasPrefix(got, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("PlatformVersion() = %q", got)
	}
}

func TestDeviceID_Stable(t *testing.T) {
	a := DeviceID("host", []string{"aa:bb", "cc:dd"})
	b := DeviceID("host", []string{"cc:dd", "aa:bb"})
	if a != b {
		t.Errorf("DeviceID depends on address order: %s vs %s", a, b)
	}
	if c := DeviceID("other", []string{"aa:bb", "cc:dd"}); c == a {
		t.Error("different hosts produced the same ID")
	}

	id, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("DeviceID() is not a UUID: %v", err)
	}
	if id.Version() != 5 {
		t.Errorf("DeviceID() version = %d, want 5", id.Version())
	}
}

func TestSnapshot(t *testing.T) {
	t.Setenv(OperatorEnvVar, "op")
	info := Snapshot()
	if info.OperatorName != "op" || info.PlatformVersion == "" || info.DeviceID == "" {
		t.Errorf("Snapshot() = %+v", info)
	}
}

func TestClassifyInterface(t *testing.T) {
	tests := []struct {
		name string
		want NetworkState
	}{
		{"wlan0", NetworkWiFi},
		{"wlp2s0", NetworkWiFi},
		{"eth0", NetworkEthernet},
		{"enp3s0", NetworkEthernet},
		{"en0", NetworkEthernet},
		{"rmnet_data0", NetworkCellular},
		{"wwan0", NetworkCellular},
		{"docker0", NetworkOther},
	}
	for _, tt := range tests {
		if got := classifyInterface(tt.name); got != tt.want {
			t.Errorf("classifyInterface(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStateOf(t *testing.T) {
	all := func(net.Interface) bool { return true }
	none := func(net.Interface) bool { return false }

	ifaces := []net.Interface{{Name: "docker0"}, {Name: "eth0"}, {Name: "wlan0"}}
	if got := stateOf(ifaces, all); got != NetworkWiFi {
		t.Errorf("stateOf() = %v, want WiFi", got)
	}
	if got := stateOf(ifaces[:2], all); got != NetworkEthernet {
		t.Errorf("stateOf() = %v, want Ethernet", got)
	}
	if got := stateOf(ifaces, none); got != NetworkNone {
		t.Errorf("stateOf() = %v, want None", got)
	}
}

func TestResolveNetworkName_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := make(chan string, 1)
	ResolveNetworkName(ctx, "example.invalid:80", func(name string) { got <- name })

	select {
	case name := <-got:
		if name != "None" {
			t.Errorf("name = %q, want None", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestResolveNetworkName_Loopback(t *testing.T) {
	got := make(chan string, 1)
	ResolveNetworkName(context.Background(), "127.0.0.1:9", func(name string) { got <- name })

	select {
	case name := <-got:
		if name != "Other" {
			t.Errorf("name = %q, want Other", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback not invoked")
	}
}
