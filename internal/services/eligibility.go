package services

import "luckydraw/internal/models"

// ComputeEligible returns the participants that may be drawn. With repeats
// allowed that is everyone; otherwise anyone whose N already appears among
// the winners is left out.
func ComputeEligible(participants []models.Participant, winners []models.Winner, settings models.Settings) []models.Participant {
	if settings.AllowRepeatWinners {
		return participants
	}
	won := make(map[int]struct{}, len(winners))
	for _, w := range winners {
		won[w.N] = struct{}{}
	}
	eligible := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if _, ok := won[p.N]; !ok {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

func hasWinner(winners []models.Winner, n int) bool {
	for _, w := range winners {
		if w.N == n {
			return true
		}
	}
	return false
}
