package review

import "testing"

func TestFirstName(t *testing.T) {
	cases := []struct {
		fullName string
		want     string
	}{
		{"Dr. Amit Patel", "Amit"},
		{"Jane Mwangi", "Mwangi"},
		{"Cher", "Cher"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := firstName(tc.fullName); got != tc.want {
			t.Fatalf("firstName(%q) = %q, want %q", tc.fullName, got, tc.want)
		}
	}
}

func TestPersonalizeSummaryPrefixesMissingName(t *testing.T) {
	got := personalizeSummary("Showed strong leadership this cycle.", "Dr. Amit Patel")
	want := "Amit showed strong leadership this cycle."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPersonalizeSummaryLeavesMentionedName(t *testing.T) {
	summary := "AMIT showed strong leadership this cycle."
	if got := personalizeSummary(summary, "Dr. Amit Patel"); got != summary {
		t.Fatalf("expected summary unchanged, got %q", got)
	}
}

func TestPersonalizeSummaryEmptyInputs(t *testing.T) {
	if got := personalizeSummary("", "Dr. Amit Patel"); got != "" {
		t.Fatalf("expected empty summary unchanged, got %q", got)
	}
	if got := personalizeSummary("A fine year.", ""); got != "A fine year." {
		t.Fatalf("expected summary unchanged without a name, got %q", got)
	}
}
