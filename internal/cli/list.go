package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/task"
	"github.com/convoy-sh/convoy/internal/util"
	"github.com/spf13/cobra"
)

var tasksAllFlag bool

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List defined commands and tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := task.NewRegistry(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		commands := registry.CommandNames()
		sort.Strings(commands)
		if len(commands) > 0 {
			fmt.Fprintln(out, "Commands:")
			for _, name := range commands {
				fmt.Fprintf(out, "  %-16s %s\n", name, strings.Join(cfg.Commands[name], " → "))
			}
			fmt.Fprintln(out)
		}

		tasks := registry.Visible()
		if tasksAllFlag {
			tasks = registry.All()
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks defined")
			return nil
		}

		fmt.Fprintln(out, "Tasks:")
		for _, t := range tasks {
			fmt.Fprintf(out, "  %-16s %s%s\n", t.Name, t.Description, taskMarkers(t))
		}
		return nil
	},
}

func taskMarkers(t *task.Task) string {
	var markers []string
	if t.Local {
		markers = append(markers, "local")
	}
	if t.Once {
		markers = append(markers, "once")
	}
	if len(t.Only) > 0 {
		markers = append(markers, "only: "+strings.Join(t.Only, ","))
	}
	if t.IsHook() {
		markers = append(markers, fmt.Sprintf("%s %s", t.Role, t.HookTarget))
	}
	if t.Hidden {
		markers = append(markers, "hidden")
	}
	if len(markers) == 0 {
		return ""
	}
	return "  [" + strings.Join(markers, ", ") + "]"
}

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List configured hosts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		hosts := host.All(cfg)
		if len(hosts) == 0 {
			fmt.Fprintln(out, "No hosts configured")
			return nil
		}

		for _, h := range hosts {
			fmt.Fprintf(out, "%s\n", h.Name)
			fmt.Fprintf(out, "  ssh:  %s\n", util.JoinOrNone(h.SSH))
			if h.Dir != "" {
				fmt.Fprintf(out, "  dir:  %s\n", h.Dir)
			}
			if len(h.Tags) > 0 {
				fmt.Fprintf(out, "  tags: %s\n", strings.Join(h.Tags, ", "))
			}
			if settings := h.Settings.Resolved(); len(settings) > 0 {
				keys := make([]string, 0, len(settings))
				for k := range settings {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "  %s=%s\n", k, settings[k])
				}
			}
		}
		return nil
	},
}

func init() {
	tasksCmd.Flags().BoolVar(&tasksAllFlag, "all", false, "include hidden tasks")

	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(hostsCmd)
}
