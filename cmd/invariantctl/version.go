package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

func newVersionCmd() *cobra.Command {
	var minVersion string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version, optionally checked against --min-version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if minVersion != "" {
				if err := checkMinVersion(buildVersion, minVersion); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion)
			return nil
		},
	}

	cmd.Flags().StringVar(&minVersion, "min-version", "", "fail unless the build version is at least this semver")
	return cmd
}

// checkMinVersion fails if version is not a valid semver at least min.
// Both may be given with or without a leading "v"; semver.Compare requires
// it, so it is added if absent.
func checkMinVersion(version, min string) error {
	v := canonicalSemver(version)
	m := canonicalSemver(min)
	if !semver.IsValid(v) {
		return fmt.Errorf("build version %q is not a valid semver", version)
	}
	if !semver.IsValid(m) {
		return fmt.Errorf("--min-version %q is not a valid semver", min)
	}
	if semver.Compare(v, m) < 0 {
		return fmt.Errorf("build version %s is below required minimum %s", version, min)
	}
	return nil
}

func canonicalSemver(s string) string {
	if !strings.HasPrefix(s, "v") {
		return "v" + s
	}
	return s
}
