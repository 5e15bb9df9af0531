// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// windowsReservedNames are device names Windows refuses as file or
// directory names, with or without an extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name, ignoring case and any
// extension, is a reserved Windows device name. Environment names double as
// directory names, so validation warns about them.
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.LastIndex(upper, "."); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}
