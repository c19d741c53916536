package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRoundedUnit(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{-30, "30s"},
		{60, "1m"},
		{3599, "59m"},
		{3600, "1h"},
		{7300, "2h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRoundedUnit(tt.seconds))
	}
}

func TestFormatUnixSeconds(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 6, 0, time.Local)
	assert.Equal(t, "2024-03-09 14:05:06", FormatUnixSeconds(float64(ts.Unix())+0.75))
}
