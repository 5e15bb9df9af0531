// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It maps the Go host description onto the names python environment markers
// use (platform_system, sys_platform, os_name, platform_machine), detects
// application sandboxes that need a spawn prefix to launch host commands, and
// flags Windows reserved names that cannot be used as environment names.
package platform
