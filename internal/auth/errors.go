// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")
