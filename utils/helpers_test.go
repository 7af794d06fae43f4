package utils

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAndCorrectURL(t *testing.T) {
	tests := map[string]string{
		"example.com":          "http://example.com",
		"example.com/":         "http://example.com",
		"https://example.com/": "https://example.com",
		"http://example.com//": "http://example.com",
		"localhost:3000":       "http://localhost:3000",
	}
	for in, want := range tests {
		assert.Equal(t, want, CheckAndCorrectURL(in), in)
	}
}

func TestIsTruthy(t *testing.T) {
	truthy := []interface{}{true, "false", "0", 1.0, -1, json.Number("2"), []interface{}{}, map[string]interface{}{}}
	falsy := []interface{}{nil, false, "", 0.0, 0, int64(0), math.NaN(), json.Number("0")}

	for _, v := range truthy {
		assert.True(t, IsTruthy(v), "%#v", v)
	}
	for _, v := range falsy {
		assert.False(t, IsTruthy(v), "%#v", v)
	}
}

func TestGenerateUniqueNumber(t *testing.T) {
	prevClock, prevRandom := clock, randomUnit
	t.Cleanup(func() { clock, randomUnit = prevClock, prevRandom })

	clock = func() time.Time { return time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC) }
	randomUnit = func() float64 { return 0.5 }

	assert.Equal(t, "0703245500005", GenerateUniqueNumber(4))
	assert.Equal(t, "070324550000000043", GenerateUniqueNumber(42, 18))

	randomUnit = func() float64 { return 0 }
	assert.Equal(t, "0703241000001", GenerateUniqueNumber(0))

	randomUnit = func() float64 { return 0.9999 }
	assert.Equal(t, "0703249991000", GenerateUniqueNumber(999))
}
