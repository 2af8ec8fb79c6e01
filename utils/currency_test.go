package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 42.5, Round2(850*0.05))
	assert.Equal(t, 262.5, Round2(262.499999999))
	assert.Equal(t, 0.1, Round2(0.1+1e-12))
	assert.Equal(t, 0.0, Round2(0))
}
