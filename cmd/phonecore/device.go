package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phonecore/phonecore/internal/deviceinfo"
	"github.com/phonecore/phonecore/internal/ui"
)

var deviceFlags struct {
	format string
	target string
}

func init() {
	deviceCmd.Flags().StringVarP(&deviceFlags.format, "format", "f", "text", "Output format: text, json or yaml")
	deviceCmd.Flags().StringVar(&deviceFlags.target, "target", deviceinfo.DefaultProbeTarget, "host:port used to find the active network")
	rootCmd.AddCommand(deviceCmd)
}

// deviceReport is what the device command prints
type deviceReport struct {
	deviceinfo.Info `yaml:",inline"`
	Interfaces      string `json:"interfaces" yaml:"interfaces"`
	ActiveNetwork   string `json:"active_network" yaml:"active_network"`
}

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Show device and network information",
	Long: `Show the information a request client reports about this machine:
operator, platform, device brand, terminal size, device ID and the
network used to reach --target.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := deviceReport{
			Info:          deviceinfo.Snapshot(),
			Interfaces:    deviceinfo.CurrentNetworkState().String(),
			ActiveNetwork: lookupNetwork(cmd.Context(), deviceFlags.target),
		}
		return writeDeviceReport(cmd.OutOrStdout(), report, deviceFlags.format)
	},
}

func writeDeviceReport(w io.Writer, r deviceReport, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		return yaml.NewEncoder(w).Encode(r)
	case "text", "":
		details := map[string]string{
			"Operator":       r.OperatorName,
			"Platform":       r.PlatformVersion,
			"Brand":          r.DeviceBrand,
			"Device ID":      r.DeviceID,
			"Interfaces":     r.Interfaces,
			"Active network": r.ActiveNetwork,
		}
		if r.ScreenResolution != "" {
			details["Screen"] = r.ScreenResolution
		}
		ui.NewPrinter(w).PrintSuccess("Device", details)
		return nil
	default:
		return fmt.Errorf("unknown format %q (use text, json or yaml)", format)
	}
}
