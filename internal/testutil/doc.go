// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// The helpers cover process state that tests must restore (MustSetenv,
// MustUnsetenv, MustChdir, SetHomeDir) and file fixtures (MustWriteFile,
// MustClose).
package testutil
