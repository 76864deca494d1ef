package meal

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mealcal/mealcal/internal/errors"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "canonical", input: "2024-01-15", want: "2024-01-15"},
		{name: "surrounding whitespace", input: "  2024-01-15 ", want: "2024-01-15"},
		{name: "empty", input: "", wantErr: true},
		{name: "impossible day", input: "2024-02-30", wantErr: true},
		{name: "time component", input: "2024-01-15T08:00:00Z", wantErr: true},
		{name: "wrong separator", input: "2024/01/15", wantErr: true},
		{name: "leap day", input: "2024-02-29", want: "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate("date", tt.input)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrValidation) {
					t.Fatalf("ParseDate(%q) error = %v, want VALIDATION_ERROR", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMealType(t *testing.T) {
	tests := []struct {
		input   string
		want    MealType
		wantErr bool
	}{
		{input: "breakfast", want: Breakfast},
		{input: "Lunch", want: Lunch},
		{input: " DINNER ", want: Dinner},
		{input: "brunch", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMealType("meal_type", tt.input)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrValidation) {
					t.Fatalf("ParseMealType(%q) error = %v, want VALIDATION_ERROR", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMealType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMealType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	got, err := NormalizeName("  Pancakes \n")
	if err != nil {
		t.Fatalf("NormalizeName: %v", err)
	}
	if got != "Pancakes" {
		t.Errorf("NormalizeName = %q, want %q", got, "Pancakes")
	}

	for _, blank := range []string{"", "   ", "\t\n"} {
		if _, err := NormalizeName(blank); !errors.Is(err, errors.ErrValidation) {
			t.Errorf("NormalizeName(%q) error = %v, want VALIDATION_ERROR", blank, err)
		}
	}
}

func TestCleanIngredients(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []string
		wantErr bool
	}{
		{name: "nil", input: nil, want: []string{}},
		{name: "trims", input: []string{" flour ", "eggs"}, want: []string{"flour", "eggs"}},
		{name: "drops blanks", input: []string{"", "milk", "  "}, want: []string{"milk"}},
		{name: "drops exact duplicates", input: []string{"eggs", "milk", "eggs"}, want: []string{"eggs", "milk"}},
		{name: "case differs is not a duplicate", input: []string{"Eggs", "eggs"}, want: []string{"Eggs", "eggs"}},
		{name: "exactly ten", input: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}, want: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}},
		{name: "eleven", input: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}, wantErr: true},
		{name: "duplicates do not count toward cap", input: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "a"}, want: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanIngredients(tt.input)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrValidation) {
					t.Fatalf("CleanIngredients error = %v, want VALIDATION_ERROR", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CleanIngredients unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CleanIngredients mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeIngredient(t *testing.T) {
	if got := NormalizeIngredient("  ÉPINARDS "); got != "épinards" {
		t.Errorf("NormalizeIngredient = %q, want %q", got, "épinards")
	}
}
