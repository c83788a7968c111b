package cli

import (
	"os"
	"strconv"
	"strings"
)

// envPrefix namespaces the environment variables that seed flag defaults.
const envPrefix = "FORMCALC_"

// envDefault returns the value of FORMCALC_<NAME>, where NAME is the flag
// name upper-cased with dashes turned into underscores, or fallback when it
// is unset.
func envDefault(flagName, fallback string) string {
	key := envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// envBool reads FORMCALC_<NAME> as a boolean. Unset or unparsable values
// are false.
func envBool(flagName string) bool {
	b, err := strconv.ParseBool(envDefault(flagName, "false"))
	return err == nil && b
}
