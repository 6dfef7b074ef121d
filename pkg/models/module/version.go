/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package module

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
)

const (
	MaxSegment  = 999
	MaxSegments = 4
	// MaxOrdinal is the ceiling for Increment.
	MaxOrdinal int64 = 999999999999
)

// Version is a dotted version number with one to four segments in the range [0,999].
// The number of declared segments is kept for display, comparison uses the ordinal only.
type Version struct {
	segments [MaxSegments]int
	dots     int
	ordinal  int64
}

var DefaultVersion = MustParseVersion("0.1")

func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, models_error.NewValidationError(errors.New("empty version"))
	}
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return Version{}, models_error.NewValidationError(fmt.Errorf("version '%s' must not start or end with a dot", s))
	}
	parts := strings.Split(s, ".")
	if len(parts) > MaxSegments {
		return Version{}, models_error.NewValidationError(fmt.Errorf("version '%s' has more than %d segments", s, MaxSegments))
	}
	var v Version
	for i, part := range parts {
		n, err := parseSegment(part)
		if err != nil {
			return Version{}, models_error.NewValidationError(fmt.Errorf("version '%s': %w", s, err))
		}
		v.segments[i] = n
	}
	v.dots = len(parts)
	v.ordinal = toOrdinal(v.segments)
	return v, nil
}

func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) Compare(o Version) int {
	return cmp.Compare(v.ordinal, o.ordinal)
}

func (v Version) Ordinal() int64 {
	return v.ordinal
}

func (v Version) IsZero() bool {
	return v.dots == 0
}

// Increment advances the least significant declared segment by one, carrying into
// more significant segments.
func (v Version) Increment() (Version, error) {
	dots := v.dots
	if dots == 0 {
		dots = 1
	}
	step := int64(1)
	for i := 0; i < MaxSegments-dots; i++ {
		step *= MaxSegment + 1
	}
	n := v.ordinal + step
	if n > MaxOrdinal {
		return Version{}, fmt.Errorf("incrementing version '%s': %w", v, models_error.OverflowErr)
	}
	return fromOrdinal(n, dots), nil
}

func (v Version) String() string {
	parts := make([]string, v.dots)
	for i := 0; i < v.dots; i++ {
		parts[i] = strconv.Itoa(v.segments[i])
	}
	return strings.Join(parts, ".")
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(b []byte) error {
	tmp, err := ParseVersion(string(b))
	if err != nil {
		return err
	}
	*v = tmp
	return nil
}

func parseSegment(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty segment")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid segment '%s'", s)
		}
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return 0, nil
	}
	if len(s) > 3 {
		return 0, fmt.Errorf("segment '%s' out of range", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n > MaxSegment {
		return 0, fmt.Errorf("segment '%s' out of range", s)
	}
	return n, nil
}

func toOrdinal(segments [MaxSegments]int) int64 {
	var n int64
	for _, s := range segments {
		n = n*(MaxSegment+1) + int64(s)
	}
	return n
}

func fromOrdinal(n int64, dots int) Version {
	v := Version{dots: dots, ordinal: n}
	for i := MaxSegments - 1; i >= 0; i-- {
		v.segments[i] = int(n % (MaxSegment + 1))
		n /= MaxSegment + 1
	}
	return v
}
