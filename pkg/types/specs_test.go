package types

import "testing"

func TestSpecsEqual(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b Specs
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs empty", nil, Specs{}, true},
		{"same entries", Specs{"color": "red", "size": "m"}, Specs{"size": "m", "color": "red"}, true},
		{"different value", Specs{"color": "red"}, Specs{"color": "blue"}, false},
		{"extra key", Specs{"color": "red"}, Specs{"color": "red", "size": "m"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Fatalf("Equal(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestSpecsCloneIsIndependent(t *testing.T) {
	t.Parallel()

	original := Specs{"color": "red"}
	clone := original.Clone()
	clone["color"] = "blue"

	if original["color"] != "red" {
		t.Fatalf("clone mutation leaked into original: %v", original)
	}
}
