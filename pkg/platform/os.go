// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	FreeBSD = "freebsd"
)

// Host describes the running host in the vocabulary of python environment
// markers (platform.system(), sys.platform, os.name, platform.machine()).
type Host struct {
	System  string
	SysName string
	OSName  string
	Machine string
}

// CurrentHost describes the host this process runs on.
func CurrentHost() Host {
	return HostFor(runtime.GOOS, runtime.GOARCH)
}

// HostFor maps a GOOS/GOARCH pair onto marker values.
func HostFor(goos, goarch string) Host {
	return Host{
		System:  SystemName(goos),
		SysName: SysPlatform(goos),
		OSName:  OSName(goos),
		Machine: Machine(goos, goarch),
	}
}

// SystemName returns the value python's platform.system() reports.
func SystemName(goos string) string {
	switch goos {
	case Linux:
		return "Linux"
	case Darwin:
		return "Darwin"
	case Windows:
		return "Windows"
	case FreeBSD:
		return "FreeBSD"
	default:
		return goos
	}
}

// SysPlatform returns the value of python's sys.platform.
func SysPlatform(goos string) string {
	if goos == Windows {
		return "win32"
	}
	return goos
}

// OSName returns the value of python's os.name.
func OSName(goos string) string {
	if goos == Windows {
		return "nt"
	}
	return "posix"
}

// Machine returns the value python's platform.machine() reports.
func Machine(goos, goarch string) string {
	switch goarch {
	case "amd64":
		if goos == Windows {
			return "AMD64"
		}
		return "x86_64"
	case "arm64":
		if goos == Linux {
			return "aarch64"
		}
		return "arm64"
	case "386":
		return "i686"
	default:
		return goarch
	}
}
