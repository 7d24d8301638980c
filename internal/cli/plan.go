package cli

import "github.com/spf13/cobra"

// planCmd is shorthand for `run --plan`.
var planCmd = &cobra.Command{
	Use:   "plan <command>",
	Short: "Show what a command would run, without connecting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runPlanFlag = true
		return runCommand(cmd, args[0])
	},
}

func init() {
	planCmd.Flags().StringSliceVar(&runHostsFlag, "hosts", nil, "plan only for these hosts (comma-separated names)")
	planCmd.Flags().StringSliceVarP(&runTagsFlag, "tag", "t", nil, "plan only for hosts with any of these tags")
	planCmd.Flags().BoolVar(&runNoHooksFlag, "no-hooks", false, "skip before/after hook tasks")
	planCmd.Flags().StringVar(&runStartFrom, "start-from", "", "start the pipeline at this task")

	rootCmd.AddCommand(planCmd)
}
