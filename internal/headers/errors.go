// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package headers

import "errors"

// ErrSignature is returned when a record does not start with the expected signature.
var ErrSignature = errors.New("headers: invalid record signature")
