package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// Release builds set these with -ldflags "-X github.com/vavi-recipes/vavi/cmd.version=...".
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var flagVersionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show vavi version and build information",
	Long: `Show the vavi release and the build it came from.

Builds without linker flags fall back to the module version and VCS
revision recorded by the Go toolchain.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionJSON, "json", false, "Print build information as JSON")
	rootCmd.AddCommand(versionCmd)
}

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// currentBuild prefers linker-set values and fills gaps from debug.ReadBuildInfo.
func currentBuild() buildInfo {
	b := buildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.BuildDate == "" {
				b.BuildDate = s.Value
			}
		}
	}
	return b
}

func runVersion(_ *cobra.Command, _ []string) error {
	b := currentBuild()
	if flagVersionJSON {
		out, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return fmt.Errorf("cannot encode build info: %w", err)
		}
		fmt.Fprintln(stdout, string(out))
		return nil
	}
	writeVersion(stdout, b)
	return nil
}

func writeVersion(w io.Writer, b buildInfo) {
	fmt.Fprintf(w, "vavi %s\n", b.Version)
	fmt.Fprintf(w, "  commit:  %s\n", emptyAsNA(b.Commit))
	fmt.Fprintf(w, "  built:   %s\n", emptyAsNA(b.BuildDate))
	fmt.Fprintf(w, "  go:      %s %s\n", b.GoVersion, b.Platform)
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
