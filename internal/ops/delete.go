package ops

import (
	"context"
	"database/sql"

	"github.com/mealcal/mealcal/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete retires a live meal. Its slot becomes free and its id is never
// valid again; deleting it a second time fails with NOT_FOUND.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, observe("delete", err)
	}

	if err := db.SoftDelete(ctx, database, id); err != nil {
		return nil, observe("delete", err)
	}

	observe("delete", nil)
	return &DeleteOutput{Deleted: true, ID: id}, nil
}
