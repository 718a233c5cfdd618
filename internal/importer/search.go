package importer

import (
	"strconv"
	"strings"

	"luckydraw/internal/models"
)

// Filter keeps participants whose name contains query (case-insensitive) or
// whose id contains it as a substring. A blank query returns list as is.
func Filter(list []models.Participant, query string) []models.Participant {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]models.Participant, 0, len(list))
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strconv.Itoa(p.N), q) {
			out = append(out, p)
		}
	}
	return out
}
