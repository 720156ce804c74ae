package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// canteenMinRatio is the minimum name similarity for a canteen match.
const canteenMinRatio = 0.6

type openMensaCanteen struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

type openMensaMeal struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Prices   struct {
		Students *float64 `json:"students"`
	} `json:"prices"`
}

// CanteenMenus resolves each approximate canteen name against the OpenMensa
// index by fuzzy match and returns today's first three meals per canteen.
// Unmatched names get an in-band error payload.
//
// Argument order: Canteen-Name.
func (s *Services) CanteenMenus(ctx context.Context, args ...[]string) (any, error) {
	menus := make(map[string]any)
	if len(args) == 0 {
		return menus, nil
	}

	candidates, err := s.canteenIndex(ctx)
	if err != nil {
		return nil, err
	}

	today := time.Now().Format(dateLayout)
	for _, name := range args[0] {
		if name == "" {
			continue
		}

		canteenID, ok := matchCanteen(normalizeCanteenName(name), candidates)
		if !ok {
			menus[name] = errorPayload("Kantine nicht gefunden.")
			continue
		}

		var dayMeals []openMensaMeal
		mealsURL := fmt.Sprintf("%s/api/v2/canteens/%d/days/%s/meals", s.cfg.OpenMensaBaseURL, canteenID, today)
		if err := s.getJSON(ctx, mealsURL, &dayMeals); err != nil {
			menus[name] = errorPayload("Fehler beim Abrufen: %v", err)
			continue
		}

		meals := make(map[string]any)
		for i, meal := range dayMeals {
			if i >= 3 {
				break
			}
			entry := map[string]any{"category": meal.Category}
			if meal.Prices.Students != nil {
				entry["price"] = *meal.Prices.Students
			}
			meals[meal.Name] = entry
		}
		menus[name] = meals
	}

	return menus, nil
}

// canteenIndex pages through the full OpenMensa canteen list and returns
// normalized "name city" keys mapped to canteen ids.
func (s *Services) canteenIndex(ctx context.Context) (map[string]int, error) {
	candidates := make(map[string]int)
	for page := 1; ; page++ {
		var canteens []openMensaCanteen
		pageURL := fmt.Sprintf("%s/api/v2/canteens?page=%d", s.cfg.OpenMensaBaseURL, page)
		if err := s.getJSON(ctx, pageURL, &canteens); err != nil {
			return nil, fmt.Errorf("canteen index page %d: %w", page, err)
		}
		if len(canteens) == 0 {
			return candidates, nil
		}
		for _, canteen := range canteens {
			key := normalizeCanteenName(canteen.Name + " " + canteen.City)
			candidates[key] = canteen.ID
		}
	}
}

func normalizeCanteenName(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer(",", "", "(", "", ")", "").Replace(name)
	return strings.TrimSpace(name)
}

// matchCanteen picks the candidate with the highest similarity score,
// weighting the "mensa central" keyword, and rejects matches below the
// minimum ratio.
func matchCanteen(name string, candidates map[string]int) (int, bool) {
	bestID, bestScore := 0, 0.0
	for candidate, id := range candidates {
		score := similarity(name, candidate)
		if strings.Contains(name, "mensa central") && strings.Contains(candidate, "mensa central") {
			score += 0.2
		}
		if score > bestScore && score >= canteenMinRatio {
			bestID, bestScore = id, score
		}
	}
	return bestID, bestScore > 0
}

// similarity is a Levenshtein-based ratio in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
