//go:build windows

package config

// mapEnvKey lets configs written for Linux hosts expand on Windows.
func mapEnvKey(key string) string {
	switch key {
	case "HOSTNAME":
		return "COMPUTERNAME"
	case "USER":
		return "USERNAME"
	case "HOME":
		return "USERPROFILE"
	}
	return key
}
