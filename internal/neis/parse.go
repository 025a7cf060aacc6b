package neis

import (
	"regexp"
	"strings"
)

// NEIS packs several values into single text fields separated by an HTML
// line-break marker. The parsers below are total: malformed entries degrade
// to partial or empty results, never errors.

const lineBreak = "<br/>"

// allergyRE matches the trailing allergy-code annotation on a dish name,
// e.g. " (5.6.16)". Only digits and dots qualify, so a dish whose name
// legitimately contains parentheses is left intact.
var allergyRE = regexp.MustCompile(`\s*\([\d.]+\)`)

// ParseDishes splits a DDISH_NM field into dish names, stripping allergy
// annotations and empty entries while preserving order.
// "백미밥 <br/>쇠고기배추된장국 (5.6.16)" -> ["백미밥", "쇠고기배추된장국"]
func ParseDishes(dishNm string) []string {
	if dishNm == "" {
		return []string{}
	}
	parts := strings.Split(dishNm, lineBreak)
	dishes := make([]string, 0, len(parts))
	for _, part := range parts {
		dish := strings.TrimSpace(allergyRE.ReplaceAllString(part, ""))
		if dish != "" {
			dishes = append(dishes, dish)
		}
	}
	return dishes
}

// ParseNutrition splits an NTR_INFO field into a label -> value map.
// Each entry splits on its first colon only, so values containing colons
// survive; entries without a colon are skipped.
// "탄수화물(g) : 123.3<br/>단백질(g) : 31.2" -> {"탄수화물(g)": "123.3", ...}
func ParseNutrition(ntrInfo string) map[string]string {
	nutrition := make(map[string]string)
	if ntrInfo == "" {
		return nutrition
	}
	for _, item := range strings.Split(ntrInfo, lineBreak) {
		key, value, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			nutrition[key] = strings.TrimSpace(value)
		}
	}
	return nutrition
}

// calorieRE matches the observed CAL_INFO format, a number followed by a
// "Kcal" label in varying case and spacing, e.g. "538.1 Kcal".
var calorieRE = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]+)?)\s*kcal$`)

// ParseCalories extracts the numeric text from a CAL_INFO field. Values that
// do not match the observed format are returned trimmed but otherwise
// untouched, so nothing the provider sends is ever lost.
func ParseCalories(calInfo string) string {
	trimmed := strings.TrimSpace(calInfo)
	if m := calorieRE.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return trimmed
}
