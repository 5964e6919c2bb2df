package safe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunRecovers(t *testing.T) {
	ran := false
	assert.NotPanics(t, func() {
		Run(func() {
			ran = true
			panic("boom")
		})
	})
	assert.True(t, ran)
}
