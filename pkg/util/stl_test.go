package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_back(t *testing.T) {
	assert.Equal(t, 3, Back([]int{1, 2, 3}))
	assert.Panics(t, func() {
		Back([]int{})
	})
}

func Test_sizeEmpty(t *testing.T) {
	assert.Equal(t, 0, Size[int](nil))
	assert.True(t, Empty[int](nil))
	assert.False(t, Empty([]int{1}))
}

func Test_assertFunc(t *testing.T) {
	assert.NotPanics(t, func() {
		AssertFunc(true)
	})
	assert.Panics(t, func() {
		AssertFunc(false)
	})
}
