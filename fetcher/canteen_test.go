package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCanteenName(t *testing.T) {
	assert.Equal(t, "mensa central stuttgart", normalizeCanteenName("Mensa Central, (Stuttgart) "))
	assert.Equal(t, "mensa am park", normalizeCanteenName("Mensa am Park"))
}

func TestMatchCanteen(t *testing.T) {
	candidates := map[string]int{
		"mensa central stuttgart": 101,
		"mensa am park leipzig":   202,
		"cafeteria nord hamburg":  303,
	}

	id, ok := matchCanteen("mensa central stuttgart", candidates)
	require.True(t, ok)
	assert.Equal(t, 101, id)

	// Close but imperfect input still matches.
	id, ok = matchCanteen("mensa central stutgart", candidates)
	require.True(t, ok)
	assert.Equal(t, 101, id)

	_, ok = matchCanteen("burger laden", candidates)
	assert.False(t, ok, "nothing above the minimum ratio")
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("abc", "abc"))
	assert.Equal(t, 1.0, similarity("", ""))
	assert.InDelta(t, 0.75, similarity("abcd", "abcx"), 0.001)
	assert.Equal(t, 0.0, similarity("abc", "xyz"))
}

func TestCanteenMenus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/canteens", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `[{"id": 7, "name": "Mensa Central", "city": "Stuttgart"}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("/api/v2/canteens/7/days/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"name": "Linsen mit Spätzle", "category": "Hauptgericht", "prices": {"students": 3.5}},
			{"name": "Salatteller", "category": "Beilage", "prices": {"students": null}},
			{"name": "Suppe", "category": "Vorspeise", "prices": {"students": 1.2}},
			{"name": "Dessert", "category": "Nachtisch", "prices": {"students": 1.0}}
		]`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	services := New(Config{OpenMensaBaseURL: server.URL})

	payload, err := services.CanteenMenus(context.Background(), []string{"Mensa Central Stuttgart", "Unbekannte Kantine XYZ"})
	require.NoError(t, err)

	menus := payload.(map[string]any)
	require.Contains(t, menus, "Mensa Central Stuttgart")
	require.Contains(t, menus, "Unbekannte Kantine XYZ")

	meals := menus["Mensa Central Stuttgart"].(map[string]any)
	assert.Len(t, meals, 3, "at most three meals per canteen")
	assert.Contains(t, meals, "Linsen mit Spätzle")
	assert.NotContains(t, meals, "Dessert")

	lentils := meals["Linsen mit Spätzle"].(map[string]any)
	assert.Equal(t, "Hauptgericht", lentils["category"])
	assert.Equal(t, 3.5, lentils["price"])

	salad := meals["Salatteller"].(map[string]any)
	assert.NotContains(t, salad, "price", "null price stays absent")

	missing := menus["Unbekannte Kantine XYZ"].(map[string]any)
	assert.Equal(t, "Kantine nicht gefunden.", missing["error"])
}
