package utils

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

var (
	clock      = time.Now
	randomUnit = rand.Float64
)

const defaultUniqueNumberLength = 13

// GenerateUniqueNumber builds DDMMYY + a random 3 digit block + uniqueID+1
// zero padded so the whole number has the requested length.
func GenerateUniqueNumber(uniqueID int, length ...int) string {
	size := defaultUniqueNumberLength
	if len(length) > 0 && length[0] > 0 {
		size = length[0]
	}

	now := clock()
	date := fmt.Sprintf("%02d%02d%02d", now.Day(), int(now.Month()), now.Year()%100)
	random := int(math.Floor(randomUnit()*900)) + 100

	width := size - len(date) - 3
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s%d%0*d", date, random, width, uniqueID+1)
}
