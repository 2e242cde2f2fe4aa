package catalog

import (
	"sort"

	"github.com/ideaforge/idea-engine/internal/models"
)

// Hidden content gated behind the easter egg flag. Ideas in the
// esoteric app type, or tagged with the joke language, stay invisible
// until the flag is activated.
const (
	hiddenAppType  = "Programación Esotérica"
	hiddenLanguage = "Brainfuck"
)

// SortBy selects the secondary ordering applied after filtering
type SortBy string

const (
	SortDefault   SortBy = ""
	SortCategory  SortBy = "category"
	SortLanguage  SortBy = "language"
	SortFramework SortBy = "framework"
	SortDatabase  SortBy = "database"
	SortLevel     SortBy = "level"
)

// Filters holds the current selection state. Empty string means "no
// filter" for that dimension. The engine is a pure function of
// (catalog, filters); there is no hidden state.
type Filters struct {
	AppType   string
	Category  string
	Language  string
	Framework string
	Database  string
	Level     models.Level
	EasterEgg bool
	SortBy    SortBy
}

// Apply returns the ordered subsequence of ideas matching every
// non-empty selection. The easter-egg exclusion runs before user
// filters, so hidden ideas never appear in any filtered view.
func Apply(ideas []*models.ProjectIdea, f Filters) []*models.ProjectIdea {
	visible := applyVisibility(ideas, f.EasterEgg)

	var result []*models.ProjectIdea
	for _, idea := range visible {
		if f.AppType != "" && idea.AppType != f.AppType {
			continue
		}
		if f.Category != "" && idea.Category != f.Category {
			continue
		}
		if f.Language != "" && !idea.HasTechnology(f.Language) {
			continue
		}
		if f.Framework != "" && !idea.HasFramework(f.Framework) {
			continue
		}
		if f.Database != "" && !idea.HasDatabase(f.Database) {
			continue
		}
		if f.Level != "" && idea.Level != f.Level {
			continue
		}
		result = append(result, idea)
	}

	sortIdeas(result, f.SortBy)
	return result
}

// applyVisibility strips hidden content unless the easter egg is active
func applyVisibility(ideas []*models.ProjectIdea, easterEgg bool) []*models.ProjectIdea {
	if easterEgg {
		return ideas
	}

	var visible []*models.ProjectIdea
	for _, idea := range ideas {
		if idea.AppType == hiddenAppType {
			continue
		}
		if idea.HasTechnology(hiddenLanguage) {
			continue
		}
		visible = append(visible, idea)
	}
	return visible
}

// Options holds the filter values offered for the current selection
type Options struct {
	AppTypes   []string       `json:"app_types"`
	Categories []string       `json:"categories"`
	Languages  []string       `json:"languages"`
	Frameworks []string       `json:"frameworks"`
	Databases  []string       `json:"databases"`
	Levels     []models.Level `json:"levels"`
}

// DeriveOptions computes the offered filter values. Each dimension is
// derived after applying its upstream filters, so selecting an app type
// narrows the offered languages, and selecting a language narrows the
// offered frameworks and databases.
func DeriveOptions(ideas []*models.ProjectIdea, f Filters) Options {
	visible := applyVisibility(ideas, f.EasterEgg)

	opts := Options{
		AppTypes:   []string{},
		Categories: []string{},
		Languages:  []string{},
		Frameworks: []string{},
		Databases:  []string{},
		Levels:     models.Levels,
	}

	appTypes := make(map[string]bool)
	categories := make(map[string]bool)
	languages := make(map[string]bool)
	frameworks := make(map[string]bool)
	databases := make(map[string]bool)

	for _, idea := range visible {
		appTypes[idea.AppType] = true

		if f.AppType != "" && idea.AppType != f.AppType {
			continue
		}
		categories[idea.Category] = true
		for _, t := range idea.Technologies {
			languages[t] = true
		}

		if f.Language != "" && !idea.HasTechnology(f.Language) {
			continue
		}
		for _, fw := range idea.Frameworks {
			frameworks[fw] = true
		}
		for _, db := range idea.Databases {
			databases[db] = true
		}
	}

	opts.AppTypes = sortedKeys(appTypes)
	opts.Categories = sortedKeys(categories)
	opts.Languages = sortedKeys(languages)
	opts.Frameworks = sortedKeys(frameworks)
	opts.Databases = sortedKeys(databases)
	return opts
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// sortIdeas applies the secondary ordering. Default keeps catalog order.
// Level sorts by tier ordinal, not lexically.
func sortIdeas(ideas []*models.ProjectIdea, by SortBy) {
	switch by {
	case SortCategory:
		sort.SliceStable(ideas, func(i, j int) bool {
			return ideas[i].Category < ideas[j].Category
		})
	case SortLanguage:
		sort.SliceStable(ideas, func(i, j int) bool {
			return firstTag(ideas[i].Technologies) < firstTag(ideas[j].Technologies)
		})
	case SortFramework:
		sort.SliceStable(ideas, func(i, j int) bool {
			return firstTag(ideas[i].Frameworks) < firstTag(ideas[j].Frameworks)
		})
	case SortDatabase:
		sort.SliceStable(ideas, func(i, j int) bool {
			return firstTag(ideas[i].Databases) < firstTag(ideas[j].Databases)
		})
	case SortLevel:
		sort.SliceStable(ideas, func(i, j int) bool {
			return ideas[i].Level.Ordinal() < ideas[j].Level.Ordinal()
		})
	}
}

func firstTag(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}
