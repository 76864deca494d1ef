package meal

// MealType is one of the three fixed slots of a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists the meal types in day order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// Label returns the capitalized display name ("Breakfast").
func (t MealType) Label() string {
	switch t {
	case Breakfast:
		return "Breakfast"
	case Lunch:
		return "Lunch"
	case Dinner:
		return "Dinner"
	}
	return string(t)
}

// Order returns the position of t within a day (0-2), or -1 if unknown.
func (t MealType) Order() int {
	for i, mt := range MealTypes {
		if mt == t {
			return i
		}
	}
	return -1
}

// MaxIngredients caps the ingredient list of a single meal.
const MaxIngredients = 10

// Meal is a single planned meal occupying one slot.
type Meal struct {
	// ID is a ULID assigned on creation and never reused
	ID string `json:"id"`

	// Date is the calendar day, always YYYY-MM-DD
	Date string `json:"date"`

	// MealType is breakfast, lunch or dinner
	MealType MealType `json:"meal_type"`

	// Name is the trimmed display name
	Name string `json:"name"`

	// Ingredients preserves insertion order; never nil once loaded
	Ingredients []string `json:"ingredients"`

	// CreatedAt is the Unix timestamp when the meal was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last mutation (including move/swap)
	UpdatedAt int64 `json:"updated_at"`

	// DeletedAt is set once the meal is deleted; deleted meals are never returned
	DeletedAt *int64 `json:"-"`
}

// Slot identifies the (date, meal type) pair a meal occupies.
type Slot struct {
	Date     string
	MealType MealType
}

// Slot returns the slot m currently occupies.
func (m *Meal) Slot() Slot {
	return Slot{Date: m.Date, MealType: m.MealType}
}
