// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package nrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "RequestOutOfRange", Name(RequestOutOfRange))
	assert.Equal(t, "255", Name(Code(255)))
}

func TestIsNegative(t *testing.T) {
	assert.False(t, IsNegative(PositiveResponse))
	assert.True(t, IsNegative(RequestOutOfRange))
	assert.False(t, IsNegative(Code(0xAB)))
}

func TestIsSupported(t *testing.T) {
	supported := map[Code]struct{}{RequestSequenceError: {}}

	assert.True(t, IsSupported(RequestSequenceError, supported))
	assert.True(t, IsSupported(GeneralReject, supported), "always-valid set applies regardless of handler")
	assert.False(t, IsSupported(InvalidKey, supported))
}
