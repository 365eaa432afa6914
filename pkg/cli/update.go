package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Version is stamped at build time with -ldflags "-X .../pkg/cli.Version=x.y.z".
var Version = "0.1.0"

// UpdateCheck looks up the newest release; swapped out in tests.
var UpdateCheck = selfupdate.DetectLatest

// CheckForUpdates compares the running Version with the latest GitHub release
// of repo and, if confirm agrees, replaces the executable in place.
func CheckForUpdates(repo string, out io.Writer, confirm func(prompt string) bool) error {
	fmt.Fprintf(out, "Current version: %s\n", Version)
	current, err := semver.ParseTolerant(Version)
	if err != nil {
		return fmt.Errorf("could not parse current version %q: %w", Version, err)
	}
	latest, found, err := UpdateCheck(repo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found || latest == nil {
		fmt.Fprintf(out, "No releases found for %s.\n", repo)
		return nil
	}
	fmt.Fprintf(out, "Latest version: %s\n", latest.Version)
	if latest.Version.LTE(current) {
		fmt.Fprintf(out, "You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(out, "Version %s is available but has no asset for this platform: %s\n", latest.Version, latest.URL)
		return nil
	}
	if !confirm(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version)) {
		fmt.Fprintln(out, "Update cancelled.")
		return nil
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(out, "Updated to %s. Restart tpaint to use it.\n", latest.Version)
	return nil
}

func yes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes"
}
