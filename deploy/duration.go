// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package deploy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Unit lengths in seconds used by the humanized ttl form
const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	secondsPerMonth  = 2_630_016
	secondsPerYear   = 31_557_600
)

// FormatTTL renders a millisecond duration in the humanized form used by the node,
// for example "30m", "1h 30m" or "1day"
func FormatTTL(ms uint64) string {
	if ms == 0 {
		return "0s"
	}
	secs := ms / 1000
	parts := make([]string, 0, 7)
	add := func(n uint64, unit string, plural bool) {
		if n == 0 {
			return
		}
		if plural && n > 1 {
			unit += "s"
		}
		parts = append(parts, strconv.FormatUint(n, 10)+unit)
	}
	add(secs/secondsPerYear, "year", true)
	secs %= secondsPerYear
	add(secs/secondsPerMonth, "month", true)
	secs %= secondsPerMonth
	add(secs/secondsPerDay, "day", true)
	secs %= secondsPerDay
	add(secs/secondsPerHour, "h", false)
	secs %= secondsPerHour
	add(secs/secondsPerMinute, "m", false)
	add(secs%secondsPerMinute, "s", false)
	add(ms%1000, "ms", false)
	return strings.Join(parts, " ")
}

var ttlUnits = map[string]uint64{
	"ms":      1,
	"msec":    1,
	"s":       1000,
	"sec":     1000,
	"secs":    1000,
	"second":  1000,
	"seconds": 1000,
	"m":       secondsPerMinute * 1000,
	"min":     secondsPerMinute * 1000,
	"mins":    secondsPerMinute * 1000,
	"minute":  secondsPerMinute * 1000,
	"minutes": secondsPerMinute * 1000,
	"h":       secondsPerHour * 1000,
	"hr":      secondsPerHour * 1000,
	"hrs":     secondsPerHour * 1000,
	"hour":    secondsPerHour * 1000,
	"hours":   secondsPerHour * 1000,
	"d":       secondsPerDay * 1000,
	"day":     secondsPerDay * 1000,
	"days":    secondsPerDay * 1000,
	"w":       7 * secondsPerDay * 1000,
	"week":    7 * secondsPerDay * 1000,
	"weeks":   7 * secondsPerDay * 1000,
	"M":       secondsPerMonth * 1000,
	"month":   secondsPerMonth * 1000,
	"months":  secondsPerMonth * 1000,
	"y":       secondsPerYear * 1000,
	"year":    secondsPerYear * 1000,
	"years":   secondsPerYear * 1000,
}

// ParseTTL parses the humanized form produced by FormatTTL into milliseconds
func ParseTTL(s string) (uint64, error) {
	rest := strings.TrimSpace(s)
	if rest == "" {
		return 0, fmt.Errorf("empty ttl")
	}
	var total uint64
	for rest != "" {
		digits := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsDigit(r) })
		if digits == 0 {
			return 0, fmt.Errorf("invalid ttl %q: expected number", s)
		}
		if digits < 0 {
			return 0, fmt.Errorf("invalid ttl %q: missing unit", s)
		}
		n, err := strconv.ParseUint(rest[:digits], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ttl %q: %w", s, err)
		}
		rest = strings.TrimLeftFunc(rest[digits:], unicode.IsSpace)
		unitLen := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
		if unitLen < 0 {
			unitLen = len(rest)
		}
		mult, ok := ttlUnits[rest[:unitLen]]
		if !ok {
			return 0, fmt.Errorf("invalid ttl %q: unknown unit %q", s, rest[:unitLen])
		}
		if n > (math.MaxUint64-total)/mult {
			return 0, fmt.Errorf("invalid ttl %q: overflow", s)
		}
		total += n * mult
		rest = strings.TrimLeftFunc(rest[unitLen:], unicode.IsSpace)
	}
	return total, nil
}
