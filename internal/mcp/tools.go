package mcp

import "github.com/mark3labs/mcp-go/mcp"

const (
	dateDesc     = "Calendar date in YYYY-MM-DD format"
	mealTypeDesc = "One of breakfast, lunch, dinner"
)

var listToolDef = mcp.NewTool("meal_list",
	mcp.WithDescription("List planned meals between two dates (inclusive), ordered by date then breakfast, lunch, dinner."),
	mcp.WithString("start_date", mcp.Required(), mcp.Description(dateDesc)),
	mcp.WithString("end_date", mcp.Required(), mcp.Description(dateDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var getToolDef = mcp.NewTool("meal_get",
	mcp.WithDescription("Get a single meal by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Meal id")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var createToolDef = mcp.NewTool("meal_create",
	mcp.WithDescription("Plan a meal in an empty slot. The meal starts with no ingredients; add them with meal_update. Fails with SLOT_OCCUPIED if the slot already holds a meal."),
	mcp.WithString("date", mcp.Required(), mcp.Description(dateDesc)),
	mcp.WithString("meal_type", mcp.Required(), mcp.Description(mealTypeDesc)),
	mcp.WithString("name", mcp.Required(), mcp.Description("Meal name")),
)

var updateToolDef = mcp.NewTool("meal_update",
	mcp.WithDescription("Rename a meal and/or replace its ingredient list (max 10, duplicates dropped). At least one of name or ingredients is required."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Meal id")),
	mcp.WithString("name", mcp.Description("New meal name")),
	mcp.WithArray("ingredients", mcp.Description("Full replacement ingredient list"), mcp.WithStringItems()),
	mcp.WithIdempotentHintAnnotation(true),
)

var deleteToolDef = mcp.NewTool("meal_delete",
	mcp.WithDescription("Delete a meal, freeing its slot."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Meal id")),
	mcp.WithDestructiveHintAnnotation(true),
)

var copyToolDef = mcp.NewTool("meal_copy",
	mcp.WithDescription("Copy a meal (name and ingredients) into another empty slot. The copy gets a new id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Source meal id")),
	mcp.WithString("target_date", mcp.Required(), mcp.Description(dateDesc)),
	mcp.WithString("target_meal_type", mcp.Required(), mcp.Description(mealTypeDesc)),
)

var moveToolDef = mcp.NewTool("meal_move",
	mcp.WithDescription("Move a meal to another empty slot, keeping its id. Moving onto its own slot is a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Meal id")),
	mcp.WithString("target_date", mcp.Required(), mcp.Description(dateDesc)),
	mcp.WithString("target_meal_type", mcp.Required(), mcp.Description(mealTypeDesc)),
)

var swapToolDef = mcp.NewTool("meal_swap",
	mcp.WithDescription("Exchange the slots of two meals. Both change or neither does."),
	mcp.WithString("meal_id_1", mcp.Required(), mcp.Description("First meal id")),
	mcp.WithString("meal_id_2", mcp.Required(), mcp.Description("Second meal id")),
)

var searchToolDef = mcp.NewTool("meal_search",
	mcp.WithDescription("Find meals using an ingredient (exact, case-insensitive match). Newest dates first, at most 10."),
	mcp.WithString("ingredient", mcp.Required(), mcp.Description("Ingredient to look for")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var summaryToolDef = mcp.NewTool("meal_summary",
	mcp.WithDescription("Markdown plan for a date range with an aggregated shopping list."),
	mcp.WithString("start_date", mcp.Required(), mcp.Description(dateDesc)),
	mcp.WithString("end_date", mcp.Required(), mcp.Description(dateDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("meal_export",
	mcp.WithDescription("Export meals to a JSONL file in the exports directory. Without dates every meal is exported."),
	mcp.WithString("path", mcp.Description("Destination .jsonl file (default: <base>/exports/meals-...jsonl)")),
	mcp.WithString("start_date", mcp.Description(dateDesc)),
	mcp.WithString("end_date", mcp.Description(dateDesc)),
)

var importToolDef = mcp.NewTool("meal_import",
	mcp.WithDescription("Import meals from a JSONL export. Imported meals get new ids."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl file")),
	mcp.WithString("mode", mcp.Description("error (default, all or nothing) or skip (skip conflicting lines)"), mcp.Enum("error", "skip")),
)

var purgeToolDef = mcp.NewTool("meal_purge",
	mcp.WithDescription("Permanently remove deleted meals."),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge meals deleted more than this many days ago")),
	mcp.WithDestructiveHintAnnotation(true),
)
