// Copyright 2026 The dag-cache Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dcerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidCarriesReason(t *testing.T) {
	e := Invalid(DanglingLocal, "fingerprint f not found")
	assert.Equal(t, BatchInvalid, e.Kind())
	assert.Equal(t, DanglingLocal, e.Reason())
	assert.Contains(t, e.Error(), "BatchInvalid")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := Wrap(BackendTransport, cause, "calling backend")
	assert.Equal(t, BackendTransport, e.Kind())
	require.Error(t, e.Unwrap())
	assert.Contains(t, e.Error(), "connection refused")
}

func TestAsUnwrapsDcerr(t *testing.T) {
	e := New(Unexpected, "boom")
	var wrapped error = e
	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, Unexpected, got.Kind())
}

func TestAsRejectsPlainError(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
}
