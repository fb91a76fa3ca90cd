package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phonecore/phonecore/internal/config"
	"github.com/phonecore/phonecore/internal/httphelper"
	"github.com/phonecore/phonecore/internal/logging"
	"github.com/phonecore/phonecore/internal/ui"
)

var profileFlags struct {
	url       string
	method    string
	timeout   int
	lang      string
	encoding  string
	fieldName string
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVarP(&profileFlags.url, "url", "u", "", "Base URL")
	f.StringVarP(&profileFlags.method, "method", "X", "", "Request method: GET or POST")
	f.IntVar(&profileFlags.timeout, "timeout-ms", 0, "Request timeout in milliseconds")
	f.StringVar(&profileFlags.lang, "lang", "", "Accept-Language header")
	f.StringVarP(&profileFlags.encoding, "encoding", "e", "", "POST body encoding: urlencoded, standard, json or none")
	f.StringVar(&profileFlags.fieldName, "field-name", "", "Multipart name attribute for uploads")

	profileCmd.AddCommand(profileSetCmd, profileShowCmd, profileListCmd, profileRemoveCmd, profileDefaultCmd)
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved request profiles",
	Long: `Profiles store request settings in config.yaml so they can be
reused with --profile. Fields left empty use the client defaults.`,
}

// applyProfileFlags copies the changed flags onto p after validating them
func applyProfileFlags(cmd *cobra.Command, p *config.Profile) error {
	flags := cmd.Flags()
	if flags.Changed("url") {
		p.BaseURL = profileFlags.url
	}
	if flags.Changed("method") {
		m, err := httphelper.ParseMethod(profileFlags.method)
		if err != nil {
			return err
		}
		p.Method = m.String()
	}
	if flags.Changed("timeout-ms") {
		if profileFlags.timeout < 0 {
			return fmt.Errorf("timeout must not be negative")
		}
		p.TimeoutMS = profileFlags.timeout
	}
	if flags.Changed("lang") {
		p.AcceptLanguage = profileFlags.lang
	}
	if flags.Changed("encoding") {
		e, err := httphelper.ParseEncoding(profileFlags.encoding)
		if err != nil {
			return err
		}
		p.Encoding = e.String()
	}
	if flags.Changed("field-name") {
		p.FileFieldName = profileFlags.fieldName
	}
	return nil
}

// profileDetails lists the fields of p that are set
func profileDetails(p *config.Profile) map[string]string {
	details := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			details[k] = v
		}
	}
	set("Base URL", p.BaseURL)
	set("Method", p.Method)
	set("Accept-Language", p.AcceptLanguage)
	set("Encoding", p.Encoding)
	set("Field name", p.FileFieldName)
	if p.TimeoutMS > 0 {
		details["Timeout"] = strconv.Itoa(p.TimeoutMS) + "ms"
	}
	return details
}

var profileSetCmd = &cobra.Command{
	Use:     "set <name>",
	Short:   "Create or update a profile",
	Example: "  phonecore profile set upload -u http://example.com/upload -X post -e standard --field-name photo",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		p := registry.EnsureProfile(args[0])
		if err := applyProfileFlags(cmd, p); err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		logging.Debug("Profile saved", zap.String("profile", args[0]))
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Profile "+args[0]+" saved", profileDetails(p))
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile (default profile when no name is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		p := registry.GetProfile(name)
		if p == nil {
			return fmt.Errorf("profile %q not found", name)
		}
		if name == "" {
			name = registry.Preferences.DefaultProfile
		}
		if name == "" {
			name = config.DefaultProfileName
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Profile "+name, profileDetails(p))
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		names := registry.ProfileNames()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.StepPendingStyle.Render("No profiles saved"))
			return nil
		}
		details := make(map[string]string, len(names))
		for _, name := range names {
			label := registry.Profiles[name].BaseURL
			if name == registry.Preferences.DefaultProfile {
				label += " (default)"
			}
			details[name] = label
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Profiles", details)
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if registry.Profiles[args[0]] == nil {
			return fmt.Errorf("profile %q not found", args[0])
		}
		registry.RemoveProfile(args[0])
		return registry.Save()
	},
}

var profileDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Select the profile used when --profile is omitted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if registry.Profiles[args[0]] == nil {
			return fmt.Errorf("profile %q not found", args[0])
		}
		registry.Preferences.DefaultProfile = args[0]
		return registry.Save()
	},
}
