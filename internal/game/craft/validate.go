package craft

import "regexp"

// namePattern admits letters, digits, spaces, apostrophes, hyphens and
// the limited markup characters item names may carry.
var namePattern = regexp.MustCompile(`^[-\w'{\[,|%= ]+$`)

// ValidateName reports whether a chosen item name is acceptable.
func ValidateName(name string) bool {
	return namePattern.MatchString(name)
}
