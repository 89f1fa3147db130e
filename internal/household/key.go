package household

import "strings"

// matchKeyFirstNameLen and matchKeyZipLen bound the prefix portions of the key.
const (
	matchKeyFirstNameLen = 3
	matchKeyZipLen       = 5
)

// MatchKey normalizes (first name, last name, zip) into the deterministic
// household matching key: lowercased last name, the first three characters of
// the first name, and the first five digits of the zip, with all
// non-alphanumeric characters stripped. Pure and stable across restarts.
//
// The key is a heuristic, not a guarantee: it is chosen so that the
// overwhelming majority of records for the same household collide, while
// accepting occasional duplicates.
func MatchKey(firstName, lastName, zipCode string) string {
	last := normalizeAlnum(lastName)
	first := normalizeAlnum(firstName)
	zip := digitsOnly(zipCode)

	if len(first) > matchKeyFirstNameLen {
		first = first[:matchKeyFirstNameLen]
	}
	if len(zip) > matchKeyZipLen {
		zip = zip[:matchKeyZipLen]
	}

	return last + first + zip
}

// ZipPrefix returns the first five digits of a zip code, tolerating zip+4
// formats like "10001-2345".
func ZipPrefix(zipCode string) string {
	zip := digitsOnly(zipCode)
	if len(zip) > matchKeyZipLen {
		zip = zip[:matchKeyZipLen]
	}
	return zip
}

func normalizeAlnum(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
