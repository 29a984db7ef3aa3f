package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordTally(t *testing.T) {
	var r RecordTally
	for _, o := range []string{"W", "l", "W", "", "bye", "L"} {
		r.Add(o)
	}
	assert.Equal(t, "2-2", r.String())
	assert.Equal(t, 4, r.Games())

	assert.True(t, r.Add("t"))
	assert.False(t, r.Add("X"))
	assert.Equal(t, "2-2-1", r.String())
}

func TestFormatRecord(t *testing.T) {
	assert.Equal(t, "0-0", FormatRecord(0, 0, 0))
	assert.Equal(t, "10-7", FormatRecord(10, 7, 0))
	assert.Equal(t, "8-8-1", FormatRecord(8, 8, 1))
}
