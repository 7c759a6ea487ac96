// SPDX-License-Identifier: MPL-2.0

// Package platform holds the operating system names used for runtime.GOOS
// comparisons, such as picking the per-user configuration directory.
package platform
