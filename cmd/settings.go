package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/catalog/internal/config"
	"github.com/zjrosen/catalog/internal/flags"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Manage template directories",
}

var pathsAddCmd = &cobra.Command{
	Use:   "add <dir>",
	Short: "Add a template directory to the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		changed, err := config.AddTemplatePath(configPath(), dir)
		if err != nil {
			return err
		}
		if !changed {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is already configured\n", dir)
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", dir, configPath())
		return err
	},
}

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Manage feature flags",
}

var flagsSetCmd = &cobra.Command{
	Use:   "set <name> <true|false>",
	Short: "Enable or disable a feature flag in the config file",
	Example: `  catalog flags set all-tags true
  catalog flags set copy-id false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := flags.Lookup(args[0]); err != nil {
			return err
		}
		enabled, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("flag value must be true or false, got %q", args[1])
		}
		if err := config.SetFlag(configPath(), args[0], enabled); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %t\n", args[0], enabled)
		return err
	},
}

var flagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every feature flag and its current value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry := flags.New(cfg.Flags)
		for _, def := range flags.Known() {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-5t  %s\n",
				def.Name, registry.Enabled(def.Name), def.Description); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	pathsCmd.AddCommand(pathsAddCmd)
	flagsCmd.AddCommand(flagsSetCmd, flagsListCmd)
	rootCmd.AddCommand(pathsCmd, flagsCmd)
}
