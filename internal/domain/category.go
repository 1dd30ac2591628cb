package domain

import "fmt"

// Category identifies an upstream listing collection.
type Category string

// Supported categories, matching the upstream collection slugs.
const (
	CategoryPolitics      Category = "politics"
	CategoryWorld         Category = "world-all"
	CategoryOpinion       Category = "opinion-all"
	CategoryCrime         Category = "crime-bangladesh"
	CategoryBusiness      Category = "business-all"
	CategorySports        Category = "sports-all"
	CategoryEntertainment Category = "entertainment-all"
	CategoryJobs          Category = "chakri-all"
	CategoryLifestyle     Category = "lifestyle-all"
)

// categoryLabels maps each category slug to its display label.
var categoryLabels = map[Category]string{
	CategoryPolitics:      "Politics",
	CategoryWorld:         "World",
	CategoryOpinion:       "Opinion",
	CategoryCrime:         "Crime Bangladesh",
	CategoryBusiness:      "Business",
	CategorySports:        "Sports",
	CategoryEntertainment: "Entertainment",
	CategoryJobs:          "Jobs",
	CategoryLifestyle:     "Lifestyle",
}

// Categories returns the supported categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryPolitics,
		CategoryWorld,
		CategoryOpinion,
		CategoryCrime,
		CategoryBusiness,
		CategorySports,
		CategoryEntertainment,
		CategoryJobs,
		CategoryLifestyle,
	}
}

// Label returns the human-readable label for the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// IsValid reports whether the category is one of the supported slugs.
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory validates a category slug.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported category: %q", s)
	}
	return c, nil
}
