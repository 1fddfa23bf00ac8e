// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-tree framework for the bbfmux
// binary: declarative command definitions with pflag flag sets,
// structured help output, "did you mean" suggestions for mistyped
// commands and flags, exit-code plumbing for commands whose non-zero
// exit is an outcome rather than an error, and construction of the
// per-invocation structured logger.
package cli
