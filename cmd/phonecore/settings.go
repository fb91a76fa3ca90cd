package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phonecore/phonecore/internal/config"
	"github.com/phonecore/phonecore/internal/ui"
)

var settingsClearYes bool

func init() {
	settingsClearCmd.Flags().BoolVarP(&settingsClearYes, "yes", "y", false, "Skip the confirmation prompt")

	settingsCmd.AddCommand(settingsSetCmd, settingsGetCmd, settingsListCmd, settingsRemoveCmd, settingsClearCmd)
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persisted key/value settings",
	Long: `Manage the key/value store kept in settings.yaml next to config.yaml.

Values are parsed as YAML, so numbers, booleans and lists keep their type.`,
}

// parseSettingValue decodes a command-line value as a YAML scalar or document
func parseSettingValue(raw string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", raw, err)
	}
	if v == nil {
		// empty input or "null" stays a string
		return raw, nil
	}
	return v, nil
}

var settingsSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Store a value",
	Example: "  phonecore settings set retries 3\n  phonecore settings set tags '[a, b]'",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.OpenDefaultSettings()
		if err != nil {
			return err
		}
		value, err := parseSettingValue(args[1])
		if err != nil {
			return err
		}
		if err := store.Save(args[0], value); err != nil {
			return fmt.Errorf("failed to save setting: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s saved\n", ui.StepCompleteStyle.Render(ui.SuccessMarker), args[0])
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.OpenDefaultSettings()
		if err != nil {
			return err
		}
		var value any
		ok, err := store.Load(args[0], &value)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("setting %q not found", args[0])
		}
		out, err := formatSettingValue(value)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// formatSettingValue renders a value as single-document YAML without the
// trailing newline
func formatSettingValue(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.OpenDefaultSettings()
		if err != nil {
			return err
		}
		keys := store.Keys()
		if len(keys) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.StepPendingStyle.Render("No settings stored"))
			return nil
		}
		details := make(map[string]string, len(keys))
		for _, k := range keys {
			var value any
			if _, err := store.Load(k, &value); err != nil {
				return err
			}
			out, err := formatSettingValue(value)
			if err != nil {
				return err
			}
			details[k] = out
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Settings", details)
		return nil
	},
}

var settingsRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Delete a value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.OpenDefaultSettings()
		if err != nil {
			return err
		}
		return store.Remove(args[0])
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.OpenDefaultSettings()
		if err != nil {
			return err
		}
		if !settingsClearYes {
			warnings := []string{
				fmt.Sprintf("All %d settings in %s will be deleted", len(store.Keys()), store.Path()),
				"This cannot be undone",
			}
			if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Clear settings", warnings, "yes") {
				return nil
			}
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear settings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s settings cleared\n", ui.StepCompleteStyle.Render(ui.SuccessMarker))
		return nil
	},
}
