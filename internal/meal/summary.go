package meal

import (
	"fmt"
	"sort"
	"strings"
)

// ShoppingItem is one aggregated ingredient of a summary.
type ShoppingItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ShoppingList aggregates ingredients across meals case-insensitively.
// The first spelling seen is kept; items are sorted by folded name.
func ShoppingList(meals []Meal) []ShoppingItem {
	index := make(map[string]int)
	var items []ShoppingItem
	for _, m := range meals {
		for _, ing := range m.Ingredients {
			key := NormalizeIngredient(ing)
			if key == "" {
				continue
			}
			if i, ok := index[key]; ok {
				items[i].Count++
				continue
			}
			index[key] = len(items)
			items = append(items, ShoppingItem{Name: ing, Count: 1})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return NormalizeIngredient(items[i].Name) < NormalizeIngredient(items[j].Name)
	})
	return items
}

// Markdown renders the plan for start..end as a markdown document:
// one section per day with its three slots, then the shopping list.
func Markdown(start, end string, meals []Meal) string {
	bySlot := make(map[Slot]Meal, len(meals))
	for _, m := range meals {
		bySlot[m.Slot()] = m
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Meal plan %s to %s\n", start, end)

	for _, day := range Days(start, end) {
		fmt.Fprintf(&b, "\n## %s %s\n\n", Weekday(day), day)
		for _, mt := range MealTypes {
			m, ok := bySlot[Slot{Date: day, MealType: mt}]
			if !ok {
				fmt.Fprintf(&b, "- **%s:** _empty_\n", mt.Label())
				continue
			}
			fmt.Fprintf(&b, "- **%s:** %s", mt.Label(), escapeMarkdown(m.Name))
			if len(m.Ingredients) > 0 {
				fmt.Fprintf(&b, " (%s)", escapeMarkdown(strings.Join(m.Ingredients, ", ")))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Shopping list\n\n")
	items := ShoppingList(meals)
	if len(items) == 0 {
		b.WriteString("_Nothing to buy._\n")
		return b.String()
	}
	for _, item := range items {
		if item.Count > 1 {
			fmt.Fprintf(&b, "- %s ×%d\n", escapeMarkdown(item.Name), item.Count)
		} else {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(item.Name))
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

// escapeMarkdown keeps user text from being interpreted as markup.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
