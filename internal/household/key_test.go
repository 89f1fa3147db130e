package household

import "testing"

func TestMatchKeyNormalization(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		zipCode   string
		want      string
	}{
		{"plain", "John", "Smith", "10001", "smithjoh10001"},
		{"case and whitespace", "  JOHN ", " SMITH  ", "10001", "smithjoh10001"},
		{"zip plus four collapses", "John", "Smith", "10001-2345", "smithjoh10001"},
		{"punctuated last name", "Mary", "O'Brien-Lee", "60614", "obrienleemar60614"},
		{"short first name kept whole", "Al", "Jones", "94103", "jonesal94103"},
		{"missing first name", "", "Smith", "10001", "smith10001"},
		{"missing zip", "John", "Smith", "", "smithjoh"},
		{"non-digit zip stripped", "John", "Smith", "ABC123", "smithjoh123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchKey(tt.firstName, tt.lastName, tt.zipCode)
			if got != tt.want {
				t.Fatalf("expected key %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMatchKeyDeterministic(t *testing.T) {
	a := MatchKey("John", "Smith", "10001-2345")
	b := MatchKey("john", "SMITH", "100019999")
	if a != b {
		t.Fatalf("expected equal keys for equivalent inputs, got %q and %q", a, b)
	}
}

func TestMatchKeyDistinguishesHouseholds(t *testing.T) {
	a := MatchKey("John", "Smith", "10001")
	b := MatchKey("John", "Smith", "10002")
	if a == b {
		t.Fatalf("expected different keys for different zips, both %q", a)
	}

	c := MatchKey("Jane", "Smith", "10001")
	if a == c {
		t.Fatalf("expected different keys for different first names, both %q", a)
	}
}

func TestZipPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10001", "10001"},
		{"10001-2345", "10001"},
		{"100012345", "10001"},
		{"9410", "9410"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ZipPrefix(tt.in); got != tt.want {
			t.Fatalf("ZipPrefix(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
