package cli

import (
	"fmt"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/doctor"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/ui"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and SSH setup",
	Long: `Doctor runs diagnostic checks: config file presence and schema, SSH
targets and agent, and a scan for near-duplicate settings keys that are
probably typos. Warnings are advisory; a run proceeds despite them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		checks := []doctor.Check{&doctor.ConfigFileCheck{Path: configFlag}}

		// The remaining checks need a loaded config; if loading fails the
		// file check above already reports why.
		path, err := config.Find(configFlag)
		if err == nil && path != "" {
			if cfg, loadErr := config.Load(path); loadErr == nil {
				hosts := host.All(cfg)
				checks = append(checks,
					&doctor.ConfigSchemaCheck{Config: cfg},
					&doctor.KeyTypoCheck{Config: cfg, Hosts: hosts},
					&doctor.HostTargetsCheck{Config: cfg},
					&doctor.SSHAgentCheck{},
				)
			}
		}

		results := doctor.RunAll(checks)
		fmt.Fprint(out, ui.RenderChecks(results))

		for _, res := range results {
			if res.Status == doctor.StatusFail {
				return &exitCodeError{code: 1}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
