package meal

// ExportRecord is one line of a JSONL export file.
type ExportRecord struct {
	// Header detection field, true only for the header line
	MealcalExport bool `json:"_mealcal_export,omitempty"`

	// Header fields (only present in header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	// Meal fields
	ID          string   `json:"id,omitempty"` // informational; import assigns fresh ids
	Date        string   `json:"date,omitempty"`
	MealType    string   `json:"meal_type,omitempty"`
	Name        string   `json:"name,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	CreatedAt   int64    `json:"created_at,omitempty"`
	UpdatedAt   int64    `json:"updated_at,omitempty"`
}

// ToExportRecord converts a Meal to an ExportRecord.
func ToExportRecord(m *Meal) *ExportRecord {
	return &ExportRecord{
		ID:          m.ID,
		Date:        m.Date,
		MealType:    string(m.MealType),
		Name:        m.Name,
		Ingredients: m.Ingredients,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToMeal validates the record and converts it to a Meal without an ID.
func (r *ExportRecord) ToMeal() (*Meal, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return nil, err
	}
	mealType, err := ParseMealType("meal_type", r.MealType)
	if err != nil {
		return nil, err
	}
	name, err := NormalizeName(r.Name)
	if err != nil {
		return nil, err
	}
	ingredients, err := CleanIngredients(r.Ingredients)
	if err != nil {
		return nil, err
	}
	return &Meal{
		Date:        date,
		MealType:    mealType,
		Name:        name,
		Ingredients: ingredients,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}
