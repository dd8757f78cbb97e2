package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	t.Cleanup(func() { Logf = orig })

	var got []string
	SetLogger(func(format string, v ...interface{}) { got = append(got, fmt.Sprintf(format, v...)) })
	Logf("trial %d saved", 3)
	assert.Equal(t, []string{"trial 3 saved"}, got)

	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("dropped %d", 1) })
	assert.Equal(t, []string{"trial 3 saved"}, got)
}
