package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, -70.0, Round2(-70.004))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0.6, Sum(0.1, 0.2, 0.3))
	assert.Equal(t, 0.0, Sum())
}

func TestPercentAndRatio(t *testing.T) {
	assert.Equal(t, 90.0, Percent(300, 30))
	assert.Equal(t, 95.5, Ratio(9550, 100))
	// деление на ноль не паникует
	assert.Equal(t, 0.0, Ratio(10, 0))
}
