// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers write fixture files (MustWriteFile, MustMkdirAll) and point
// the home directory at a temporary location (SetHomeDir).
package testutil
