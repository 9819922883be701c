package main

import (
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kompox/flowops/internal/version"
)

// newCmdVersion returns a command that prints build and connection details.
func newCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settingsFrom(cmd.Context())
			database, _, _ := strings.Cut(s.DBURL, ":")
			console(cmd).KeyValues([][2]string{
				{"Version", version.Version},
				{"API version", version.APIVersion},
				{"Go version", runtime.Version()},
				{"Git commit", version.Commit},
				{"Built", version.Date},
				{"OS/Arch", runtime.GOOS + "/" + runtime.GOARCH},
				{"Profile", s.Profile},
				{"Server type", serverType(s.APIURL)},
				{"Database", orDash(database)},
			}, 13)
			return nil
		},
	}
}

// serverType tells whether the configured API is served locally or remotely.
func serverType(apiURL string) string {
	switch {
	case apiURL == "":
		return "ephemeral"
	case strings.Contains(apiURL, "://localhost"), strings.Contains(apiURL, "://127.0.0.1"):
		return "server"
	default:
		return "remote"
	}
}
