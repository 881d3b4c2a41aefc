// Package interests holds the static interest catalog users pick from
// during onboarding and profile editing. The catalog is small enough
// that search is a linear scan.
package interests

import "strings"

// Category groups related interest tags.
type Category struct {
	Name string
	Tags []string
}

// Catalog is the full set of selectable interests, in display order.
var Catalog = []Category{
	{
		Name: "Technology",
		Tags: []string{
			"JavaScript", "React", "Node.js", "Python", "Machine Learning",
			"Artificial Intelligence", "Web Development", "Mobile Development",
			"Data Science", "Blockchain", "Cybersecurity", "Cloud Computing",
		},
	},
	{
		Name: "Business",
		Tags: []string{
			"Entrepreneurship", "Marketing", "Finance", "Startups", "E-commerce",
			"Management", "Sales", "Business Strategy", "Product Management", "Leadership",
		},
	},
	{
		Name: "Creative",
		Tags: []string{
			"Design", "UI/UX Design", "Graphic Design", "Photography", "Videography",
			"Writing", "Music", "Art", "Animation", "Fashion",
		},
	},
	{
		Name: "Lifestyle",
		Tags: []string{
			"Travel", "Fitness", "Health", "Food", "Cooking", "Yoga",
			"Meditation", "Reading", "Gaming", "Sports",
		},
	},
	{
		Name: "Education",
		Tags: []string{
			"Teaching", "Learning", "Languages", "History", "Science",
			"Mathematics", "Literature", "Philosophy", "Psychology", "Self-improvement",
		},
	},
}

// All returns every interest tag as a flat list in catalog order.
func All() []string {
	var tags []string
	for _, c := range Catalog {
		tags = append(tags, c.Tags...)
	}
	return tags
}

// Contains reports whether tag is part of the catalog.
func Contains(tag string) bool {
	for _, c := range Catalog {
		for _, t := range c.Tags {
			if t == tag {
				return true
			}
		}
	}
	return false
}

// Search returns tags containing the query, case-insensitively. An
// empty query matches nothing.
func Search(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var matches []string
	for _, tag := range All() {
		if strings.Contains(strings.ToLower(tag), q) {
			matches = append(matches, tag)
		}
	}
	return matches
}
