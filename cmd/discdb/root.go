package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var userFlag string
	var roleFlag string

	ctx := newCommandContext(&configFlag, &userFlag, &roleFlag)

	rootCmd := &cobra.Command{
		Use:           "discdb",
		Short:         "Catalog optical disc releases from ripper logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&userFlag, "as", "", "Act as this user id instead of identity.user_id")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Act in this role: owner, administrator or system")

	rootCmd.AddCommand(newLogCommand(ctx))
	rootCmd.AddCommand(newIDCommand(ctx))
	rootCmd.AddCommand(newContributionCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
