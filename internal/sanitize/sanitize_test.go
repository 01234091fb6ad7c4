package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Groceries", "Groceries"},
		{"trims", "  Groceries \n", "Groceries"},
		{"strips_tags", "<b>Lunch</b> with <i>team</i>", "Lunch with team"},
		{"drops_script", "<script>alert('x')</script>Coffee", "Coffee"},
		{"only_markup", "<img src=x onerror=alert(1)>", ""},
		{"ampersand_kept", "Bills & Co", "Bills & Co"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestText_EncodedMarkupDoesNotSurvive(t *testing.T) {
	got := Text("&lt;script&gt;alert(1)&lt;/script&gt;Rent")
	if got != "Rent" {
		t.Errorf("got %q, want %q", got, "Rent")
	}
}

func TestText_LessThanKept(t *testing.T) {
	if got := Text("a < b"); got != "a < b" {
		t.Errorf("got %q", got)
	}
}
