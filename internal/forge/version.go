// Package forge handles the Forge mod loader: version classification, the
// version.json shipped inside the universal jar, the libraries it declares
// and the legacy mod list.
package forge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unascribed/FlexVer/go/flexver"
)

const (
	// minAbsoluteRoot is the first Forge build that needs an absolute
	// repository root in the mod list.
	minAbsoluteRoot = "14.23.3.2655"

	// maxGradle2 is the last Forge build produced by ForgeGradle 2.
	maxGradle2 = "14.23.5.2847"
)

// MCVersionAtLeast reports whether actual is greater than or equal to desired.
func MCVersionAtLeast(desired, actual string) bool {
	return !flexver.Less(actual, desired)
}

// splitVersion splits a Forge id into its Minecraft and Forge parts. It
// accepts a Maven coordinate ("net.minecraftforge:forge:1.12.2-14.23.5.2855"),
// a bare version ("1.12.2-14.23.5.2855") or a version.json id
// ("1.12.2-forge1.12.2-14.23.5.2855").
func splitVersion(id string) (mc, forge string, err error) {
	if i := strings.LastIndex(id, ":"); i >= 0 {
		id = id[i+1:]
	}
	id, _, _ = strings.Cut(id, "@")

	parts := strings.Split(id, "-")
	if len(parts) < 2 || parts[0] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownForgeVersion, id)
	}
	return parts[0], parts[len(parts)-1], nil
}

// belowOneSeven reports whether mc is 1.7 or older.
func belowOneSeven(mc string) bool {
	parts := strings.Split(mc, ".")
	if len(parts) < 2 {
		return false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return minor <= 7
}

// RequiresAbsolute reports whether the mod list of a Forge build must use an
// absolute repository root. Builds for 1.7 and older never do; otherwise any
// build at or above 14.23.3.2655 does. Ids that cannot be parsed are
// treated as modern builds.
func RequiresAbsolute(id string) bool {
	mc, forge, err := splitVersion(id)
	if err != nil {
		return true
	}
	if belowOneSeven(mc) {
		return false
	}
	return !flexver.Less(forge, minAbsoluteRoot)
}

// IsForgeGradle3 reports whether a Forge build was produced by ForgeGradle 3:
// every build for Minecraft 1.13 and newer, and 1.12.2 builds after
// 14.23.5.2847.
func IsForgeGradle3(mcVersion, forgeVersion string) (bool, error) {
	if MCVersionAtLeast("1.13", mcVersion) {
		return true, nil
	}

	_, forge, err := splitVersion(forgeVersion)
	if err != nil {
		return false, err
	}
	return flexver.Less(maxGradle2, forge), nil
}
