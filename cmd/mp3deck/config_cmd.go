package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Print the effective mp3deck configuration",
	Example: "mp3deck config\nmp3deck config --config path/to/mp3deck.yml",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout())
	},
}

// printConfig writes the config file in use followed by every key with
// its resolved value.
func printConfig(w io.Writer) error {
	used := v.ConfigFileUsed()
	if used == "" {
		used = "(none, using defaults)"
	}
	if _, err := fmt.Fprintf(w, "# config file: %s\n", used); err != nil {
		return err
	}

	keys := v.AllKeys()
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s: %q\n", k, fmt.Sprint(v.Get(k))); err != nil {
			return err
		}
	}
	return nil
}
