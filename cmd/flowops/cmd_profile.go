package main

import (
	"github.com/spf13/cobra"

	"github.com/kompox/flowops/config/settings"
)

func newCmdProfile() *cobra.Command {
	c := &cobra.Command{
		Use:   "profile",
		Short: "Manage settings profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := settings.ReadFile(appFs, settings.Home())
			if err != nil {
				return err
			}
			active := settingsFrom(cmd.Context()).Profile
			for _, name := range f.Names() {
				if name == active {
					console(cmd).Success("* %s", name)
				} else {
					console(cmd).Printf("  %s\n", name)
				}
			}
			return nil
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "use <name>",
		Short: "Make a profile active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Use(appFs, settings.Home(), args[0]); err != nil {
				return err
			}
			console(cmd).Success("Connected to profile %q.", args[0])
			return nil
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting in the active profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := settingsFrom(cmd.Context()).Profile
			if err := settings.Set(appFs, settings.Home(), profile, args[0], args[1]); err != nil {
				return err
			}
			console(cmd).Success("Set %s in profile %q.", args[0], profile)
			return nil
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "inspect",
		Short: "Show the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, settingsFrom(cmd.Context()))
		},
	})
	return c
}
