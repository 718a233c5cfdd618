package services

import (
	"strconv"
	"strings"

	"luckydraw/internal/models"
)

// WinnersCSVHeader is the first line of an exported winner list.
const WinnersCSVHeader = "N,Name,PickedAt"

// WinnersCSV renders winners in list order. Values are written as is, with
// no quoting, and lines are joined by "\n" without a trailing newline.
func WinnersCSV(winners []models.Winner) string {
	rows := make([]string, len(winners))
	for i, w := range winners {
		rows[i] = strconv.Itoa(w.N) + "," + w.Name + "," + w.PickedAt
	}
	return WinnersCSVHeader + "\n" + strings.Join(rows, "\n")
}
