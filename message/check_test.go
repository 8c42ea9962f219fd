// Copyright 2025 The Rivaas Authors
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

package message

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invalidHeaderMessage = "Header names must be lower-case and contain only letters, digits or '-':"

func TestCheckHeaderNames_InvalidNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Content-Type", "accept_all", ""} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := CheckHeaderNames(false, name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "'"+name+"'")
			assert.Contains(t, err.Error(), invalidHeaderMessage)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, []string{name}, verr.Invalid)

			assert.NoError(t, CheckHeaderNames(true, name), "unchecked mode accepts every name")
		})
	}
}

func TestCheckHeaderNames_ReservedNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"content-type", "accept", "set-cookie", "authorization"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := CheckHeaderNames(false, name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "'"+name+"'")
			assert.NoError(t, CheckHeaderNames(true, name))
		})
	}
}

func TestCheckHeaders_ListsAllOffenders(t *testing.T) {
	t.Parallel()

	h := NewHeaders("content-type", "1", "accept", "1", "set-cookie", "1")
	err := CheckHeaders(h, false)
	require.Error(t, err)
	for _, name := range []string{"content-type", "accept", "set-cookie"} {
		assert.Contains(t, err.Error(), "'"+name+"'")
	}
}

func TestCheckHeaders_RegularHeaders(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckHeaders(NewHeaders("referrer", "value"), false))
	assert.NoError(t, CheckHeaders(NewHeaders("origin", "value"), false))
	assert.NoError(t, CheckHeaderNames(false, "x-request-id", "b-all"))
}

func TestValidationError_BothKinds(t *testing.T) {
	t.Parallel()

	err := CheckHeaderNames(false, "Bad_Name", "accept")
	require.Error(t, err)
	assert.Contains(t, err.Error(), invalidHeaderMessage)
	assert.Contains(t, err.Error(), "Special headers must be set through their dedicated fields: 'accept'")
}
