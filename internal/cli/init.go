package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/convoy-sh/convoy/internal/ui"
	"github.com/convoy-sh/convoy/pkg/sshutil"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const manualEntry = "(enter manually)"

var (
	initHostFlag  string
	initDirFlag   string
	initForceFlag bool
	initYesFlag   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter " + config.ConfigFileName,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !initForceFlag {
		if initYesFlag {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
				Value(&overwrite),
		))
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	sshTarget := initHostFlag
	remoteDir := initDirFlag
	hostName := ""

	if initYesFlag {
		if sshTarget == "" {
			return errors.New(errors.ErrConfig,
				"An SSH host is required with --yes",
				"Provide one with --host, or run interactively")
		}
		if remoteDir == "" {
			remoteDir = "~/apps/${PROJECT}"
		}
		hostName = "prod1"
	} else {
		var err error
		sshTarget, hostName, remoteDir, err = promptForHost(sshTarget, remoteDir)
		if err != nil {
			return err
		}
	}

	if err := probeConnection(sshTarget); err != nil && initYesFlag {
		return err
	}

	cfg := starterConfig(hostName, sshTarget, remoteDir)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# Convoy deployment configuration
# Run 'convoy run deploy' to execute the deploy pipeline
# See 'convoy tasks' and 'convoy hosts' for what is defined here

`
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Println("Next steps:")
	fmt.Println("  convoy run deploy --plan  - Preview the deploy pipeline")
	fmt.Println("  convoy run deploy         - Run it")
	fmt.Println("  convoy doctor             - Check configuration and SSH setup")
	return nil
}

// promptForHost collects the SSH target, host name, and remote directory
// interactively. Known aliases from ~/.ssh/config are offered first.
func promptForHost(sshTarget, remoteDir string) (string, string, string, error) {
	hostName := "prod1"
	if remoteDir == "" {
		remoteDir = "~/apps/${PROJECT}"
	}

	if sshTarget == "" {
		entries, _ := sshutil.ParseSSHConfig()
		if len(entries) > 0 {
			options := make([]huh.Option[string], 0, len(entries)+1)
			for _, e := range entries {
				options = append(options, huh.NewOption(e.Alias+"  ("+e.Description()+")", e.Alias))
			}
			options = append(options, huh.NewOption(manualEntry, manualEntry))

			form := huh.NewForm(huh.NewGroup(
				huh.NewSelect[string]().
					Title("Select an SSH host from your config").
					Options(options...).
					Value(&sshTarget),
			))
			if err := form.Run(); err != nil {
				return "", "", "", errors.WrapWithCode(err, errors.ErrConfig,
					"Failed to get user input",
					"Check terminal compatibility or use --host and --yes")
			}
			if sshTarget == manualEntry {
				sshTarget = ""
			}
		}
	}

	groups := []*huh.Group{}
	if sshTarget == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("SSH host or alias").
				Description("Enter hostname, user@host, or SSH config alias").
				Placeholder("deploy@203.0.113.10").
				Value(&sshTarget).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("SSH host is required")
					}
					return nil
				}),
		))
	}
	groups = append(groups,
		huh.NewGroup(
			huh.NewInput().
				Title("Host name").
				Description("How this host is referenced in tasks and --hosts").
				Value(&hostName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("host name is required")
					}
					if strings.ContainsAny(s, " \t\n") {
						return fmt.Errorf("host name cannot contain whitespace")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Remote directory").
				Description("Where task commands run (supports ${PROJECT}, ${USER}, ${HOME})").
				Value(&remoteDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("remote directory is required")
					}
					return nil
				}),
		),
	)

	form := huh.NewForm(groups...)
	if err := form.Run(); err != nil {
		return "", "", "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --host and --yes")
	}
	return sshTarget, hostName, remoteDir, nil
}

// probeConnection tries one SSH dial so a typo'd target is caught before
// the config is written. A failed probe is reported but not fatal in
// interactive mode.
func probeConnection(sshTarget string) error {
	spin := ui.NewSpinner("Testing connection to " + sshTarget)
	spin.Start()

	client, err := sshutil.Dial(sshTarget, 10*time.Second)
	if err != nil {
		spin.Fail()
		fmt.Printf("\n%s Connection to '%s' failed; saving config anyway\n\n", ui.SymbolFail, sshTarget)
		return errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Connection to '%s' failed", sshTarget),
			"Check that the host is reachable: ssh "+sshTarget)
	}
	client.Close()
	spin.Success()
	fmt.Println()
	return nil
}

// starterConfig builds a minimal but runnable deploy pipeline around one
// host.
func starterConfig(hostName, sshTarget, remoteDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Hosts[hostName] = config.HostConfig{
		SSH:  []string{sshTarget},
		Dir:  remoteDir,
		Tags: []string{"web"},
	}
	cfg.Settings["app_env"] = "production"
	cfg.Tasks = []config.TaskConfig{
		{
			Name:        "build",
			Description: "Build the release artifact locally",
			Local:       true,
			Commands:    []string{"echo build it here"},
		},
		{
			Name:        "release",
			Description: "Activate the new version",
			Commands:    []string{"echo release it here"},
		},
	}
	cfg.Commands["deploy"] = []string{"build", "release"}
	return cfg
}

func init() {
	initCmd.Flags().StringVar(&initHostFlag, "host", "", "SSH host, user@host, or alias to use")
	initCmd.Flags().StringVar(&initDirFlag, "dir", "", "remote working directory")
	initCmd.Flags().BoolVar(&initForceFlag, "force", false, "overwrite an existing config without asking")
	initCmd.Flags().BoolVar(&initYesFlag, "yes", false, "no prompts; requires --host")

	rootCmd.AddCommand(initCmd)
}
