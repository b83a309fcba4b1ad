package normalize

import "strings"

// nameSuffixes are generational suffixes kept with the last name when a full
// name is split.
var nameSuffixes = map[string]struct{}{
	"JR":  {},
	"SR":  {},
	"II":  {},
	"III": {},
	"IV":  {},
}

// SplitFullName divides a full name into first and last halves. The final
// token is the last name; a trailing generational suffix stays with it, so
// "JANE DOE JR" splits as "JANE" / "DOE JR". A single token is treated as a
// first name with no last name.
func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	if len(parts) >= 3 && isNameSuffix(parts[len(parts)-1]) {
		return strings.Join(parts[:len(parts)-2], " "), strings.Join(parts[len(parts)-2:], " ")
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

func isNameSuffix(tok string) bool {
	_, ok := nameSuffixes[strings.ToUpper(strings.TrimRight(tok, "."))]
	return ok
}
