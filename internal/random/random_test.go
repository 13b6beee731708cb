package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat64IsWithinUnitRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRangeIsWithinBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := Range(10, 20)
		assert.GreaterOrEqual(t, v, 10.0)
		assert.Less(t, v, 20.0)
	}
}
