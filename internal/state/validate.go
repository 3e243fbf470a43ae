package state

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// serverIDRegex validates distribution server ids, which become
	// instance directory names
	serverIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

	// objectHashRegex matches the SHA1 names of content-addressed asset objects
	objectHashRegex = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

	// versionRegex validates Minecraft version ids (e.g. "1.12.2", "17w50a", "1.20-pre1")
	versionRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
)

// ValidObjectHash reports whether hash is a 40 character hex SHA1, the only
// form accepted as an asset object file name.
func ValidObjectHash(hash string) bool {
	return objectHashRegex.MatchString(hash)
}

// ValidateServerID validates a server id from the distribution.
// Rules:
// - Must be 1-128 characters long
// - Must contain only alphanumeric characters, dots, underscores and hyphens
// - Must start with an alphanumeric character
// - Must not contain ".."
func ValidateServerID(id string) error {
	if id == "" {
		return fmt.Errorf("server id cannot be empty")
	}

	if len(id) > 128 {
		return fmt.Errorf("server id must be 128 characters or less, got %d", len(id))
	}

	if !serverIDRegex.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("server id must contain only alphanumeric characters, dots, underscores and hyphens: %q", id)
	}

	return nil
}

// ValidateVersion validates a Minecraft version id.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}

	if !versionRegex.MatchString(version) || strings.Contains(version, "..") {
		return fmt.Errorf("invalid version: %q", version)
	}

	return nil
}

// ValidateURL validates that raw is an absolute http or https URL.
func ValidateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host: %q", name, raw)
	}

	return nil
}

// ValidateJavaVersion validates a Java major version.
// Valid values: 8 and newer.
func ValidateJavaVersion(version int) error {
	if version < 8 {
		return fmt.Errorf("java major version must be >= 8, got %d", version)
	}
	return nil
}

// ValidateImageType validates an Adoptium image type.
func ValidateImageType(imageType string) error {
	switch imageType {
	case "jre", "jdk":
		return nil
	default:
		return fmt.Errorf("invalid image type: %q (must be jre or jdk)", imageType)
	}
}

// ValidateLogLevel validates a log level name.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", level)
	}
}
