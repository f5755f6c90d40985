package commit

import (
	"regexp"
	"strconv"
)

// minQuantityPattern matches the site's minimum-quantity rejection, e.g.
// "You must buy 3 or more of this item". Matching is case-insensitive;
// the captured group is the first integer after "buy".
var minQuantityPattern = regexp.MustCompile(`(?i)must\s+buy\s+(\d+)\s+or\s+more`)

// ParseMinQuantity extracts the minimum quantity from a remote rejection
// message of the form "must buy N or more". The second return is false
// when the message does not match or N does not fit in an int; callers
// treat that as a terminal failure, never as a guess.
func ParseMinQuantity(msg string) (int, bool) {
	m := minQuantityPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
