// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// safeStrings null-terminates names for the C side.
// Names that already carry the terminator are left alone.
func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		if strings.HasSuffix(s, "\x00") {
			safe = append(safe, s)
			continue
		}
		safe = append(safe, fmt.Sprintf("%s\x00", s))
	}
	return safe
}

// missingNames returns the names from required that are not in available.
func missingNames(required, available []string) []string {
	var missing []string
	for _, name := range required {
		if !slices.Contains(available, name) {
			missing = append(missing, name)
		}
	}
	return missing
}
