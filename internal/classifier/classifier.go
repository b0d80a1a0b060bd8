// Package classifier routes an incoming case to the department responsible for it.
// Classification is a pure function of the category name, the region and the free-text
// description; it performs no I/O and never fails.
package classifier

import (
	"crimereport/backend/internal/config"
	"fmt"
	"strings"
)

// Classification is the routing outcome for one case.
type Classification struct {
	Department string   `json:"department"`
	Priority   string   `json:"priority"`
	Reason     string   `json:"reason"`
	Keywords   []string `json:"keywords,omitempty"`
}

// Department is a routable department tag with its display name.
type Department struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

func normalize(s string) string {
	return apostrophes.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Classify picks the department for a case. Rules are tried in order and the first hit wins:
// exact category match, description keywords, category keywords combined with the region,
// and finally the default department.
func Classify(categoryName, region, description string) Classification {
	category := normalize(categoryName)

	if route, ok := config.CategoryRouting[category]; ok {
		return Classification{
			Department: route.Department,
			Priority:   route.Priority,
			Reason:     route.Reason,
			Keywords:   []string{category},
		}
	}

	if desc := normalize(description); desc != "" {
		if kw, ok := firstContained(desc, config.DataProtectionKeywords); ok {
			return Classification{
				Department: config.DepartmentCDP,
				Priority:   "high",
				Reason:     "Mots-clés CDP détectés dans la description",
				Keywords:   []string{kw},
			}
		}
		if kw, ok := firstContained(desc, config.CybercrimeKeywords); ok {
			return Classification{
				Department: config.DepartmentDSC,
				Priority:   "high",
				Reason:     "Mots-clés cybercriminalité détectés dans la description",
				Keywords:   []string{kw},
			}
		}
	}

	if c, ok := classifyByRegion(category, normalize(region)); ok {
		return c
	}

	return Classification{
		Department: config.DefaultDepartment,
		Priority:   config.DefaultPriority,
		Reason:     "Classification par défaut - compétence Police",
	}
}

// classifyByRegion applies the geographic rule. A crime family that matches the category but
// whose region is neither urban nor rural does not stop the search.
func classifyByRegion(category, region string) (Classification, bool) {
	urban, isUrban := firstContainedIn(region, config.UrbanRegions)
	rural, isRural := firstContainedIn(region, config.RuralRegions)
	if !isUrban && !isRural {
		return Classification{}, false
	}

	for _, crime := range config.GeographicCrimes {
		kw, ok := firstContained(category, crime.Keywords)
		if !ok {
			continue
		}
		if isUrban {
			return Classification{
				Department: config.DepartmentPolice,
				Priority:   crime.Priority,
				Reason:     fmt.Sprintf("%s en zone urbaine - compétence Police", crime.Label),
				Keywords:   []string{kw, urban},
			}, true
		}
		return Classification{
			Department: config.DepartmentGendarmerie,
			Priority:   crime.Priority,
			Reason:     fmt.Sprintf("%s en zone rurale - compétence Gendarmerie", crime.Label),
			Keywords:   []string{kw, rural},
		}, true
	}
	return Classification{}, false
}

// firstContained returns the first keyword that occurs in text. Keywords are already lower-case.
func firstContained(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

// firstContainedIn matches region names case-insensitively.
func firstContainedIn(text string, names []string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, name := range names {
		if strings.Contains(text, strings.ToLower(name)) {
			return name, true
		}
	}
	return "", false
}

// Departments lists every department tag known to the router, in a stable order.
func Departments() []Department {
	tags := []string{
		config.DepartmentPolice,
		config.DepartmentGendarmerie,
		config.DepartmentCDP,
		config.DepartmentDSC,
		config.DepartmentHealth,
		config.DepartmentCustoms,
	}
	out := make([]Department, 0, len(tags))
	for _, tag := range tags {
		out = append(out, Department{Tag: tag, Name: config.DepartmentNames[tag]})
	}
	return out
}

// IsDepartment reports whether tag names a known department.
func IsDepartment(tag string) bool {
	_, ok := config.DepartmentNames[tag]
	return ok
}
