package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tyriatrack/database"
	"tyriatrack/gw2"
	"tyriatrack/middleware"
	"tyriatrack/models"
	"tyriatrack/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.AchievementGroup{},
		&models.AchievementCategory{},
		&models.Achievement{},
		&models.Item{},
		&models.Title{},
		&models.Preference{},
		&models.SyncRun{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.SetDB(db)
	return db
}

// seedCatalog stores a three-achievement catalog: 2 requires 1, 3 is a
// daily rotation entry. 1 is finished by the fake account below.
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []interface{}{
		&models.AchievementGroup{
			GW2ID: "guid-1", Name: "Competitive", Order: 1,
			Categories: datatypes.JSON(`[10]`),
		},
		&models.AchievementCategory{
			GW2ID: 10, Name: "PvP Conquest", Order: 1, GroupName: "Competitive",
			Achievements: datatypes.JSON(`[1,2,3]`),
		},
		&models.Achievement{
			GW2ID: 1, Name: "First Strike", Type: "Default",
			Flags:        datatypes.JSON(`[]`),
			Tiers:        datatypes.JSON(`[{"count":1,"points":5}]`),
			Rewards:      datatypes.JSON(`[{"type":"Item","id":100,"count":1}]`),
			CategoryName: "PvP Conquest", GroupName: "Competitive", PointTotal: 5,
		},
		&models.Achievement{
			GW2ID: 2, Name: "Champion of the Mists", Type: "Default",
			Flags:         datatypes.JSON(`[]`),
			Tiers:         datatypes.JSON(`[{"count":10,"points":10}]`),
			Rewards:       datatypes.JSON(`[{"type":"Title","id":5},{"type":"Mastery","region":"Jade"}]`),
			Prerequisites: datatypes.JSON(`[1]`),
			CategoryName:  "PvP Conquest", GroupName: "Competitive", PointTotal: 10,
		},
		&models.Achievement{
			GW2ID: 3, Name: "Daily Conqueror", Type: "Default",
			Flags:        datatypes.JSON(`["Daily"]`),
			Tiers:        datatypes.JSON(`[{"count":1,"points":1}]`),
			CategoryName: "PvP Conquest", GroupName: "Competitive", PointTotal: 1,
		},
		&models.Item{GW2ID: 100, Name: "Champion's Cache", Rarity: "Exotic", VendorValue: 2000, Type: "Container"},
		&models.Title{GW2ID: 5, Name: "Veteran"},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

// fakeAccountAPI answers the two account endpoints: achievement 1 done,
// all expansions owned.
func fakeAccountAPI(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v2/account/achievements":
			fmt.Fprint(w, `[{"id":1,"current":1,"max":1,"done":true}]`)
		case "/v2/account":
			fmt.Fprint(w, `{"name":"Tester.1234","access":["GuildWars2","EndOfDragons"]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

// newTestApp wires the API routes the way the server does, minus rate
// limiting.
func newTestApp(t *testing.T, upstream string) *fiber.App {
	t.Helper()
	Init(gw2.NewClient(gw2.Config{BaseURL: upstream, MaxRetries: 1, RetryBase: time.Millisecond}))
	services.InitEventHub()
	services.InitSnapshotService()
	services.InitSyncService(
		gw2.NewClient(gw2.Config{BaseURL: upstream, MaxRetries: 1, RetryBase: time.Millisecond}),
		services.GetEventHub(), 0)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/catalog/groups", GetGroups)
	api.Get("/catalog/categories/:id", GetCategory)
	api.Get("/catalog/achievements/:id", GetAchievement)
	api.Get("/catalog/search", SearchCatalog)
	api.Get("/achievements/:id/chain", middleware.RequireAPIKey, GetChain)
	api.Get("/account/achievements", middleware.RequireAPIKey, GetAccountAchievements)
	api.Get("/recommendations", middleware.RequireAPIKey, GetRecommendations)
	api.Get("/playstyle", middleware.RequireAPIKey, GetPlaystyle)
	api.Post("/sync", TriggerSync)
	api.Get("/sync/status", GetSyncStatus)
	api.Get("/preferences", GetPreferences)
	api.Post("/preferences", SavePreferences)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer test-key")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s: bad JSON %q: %v", method, target, raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestGetGroups_NestsCategories(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, body := doRequest(t, app, "GET", "/api/catalog/groups", "")
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	groups := body["groups"].([]interface{})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0].(map[string]interface{})
	if g["name"] != "Competitive" {
		t.Errorf("group name = %v", g["name"])
	}
	cats := g["categories"].([]interface{})
	if len(cats) != 1 {
		t.Fatalf("got %d categories, want 1", len(cats))
	}
}

func TestGetCategory_FiltersPeriodic(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, body := doRequest(t, app, "GET", "/api/catalog/categories/10", "")
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	achievements := body["achievements"].([]interface{})
	if len(achievements) != 2 {
		t.Fatalf("got %d achievements, want 2 (daily filtered)", len(achievements))
	}
	for _, raw := range achievements {
		a := raw.(map[string]interface{})
		if a["name"] == "Daily Conqueror" {
			t.Error("daily achievement not filtered from category listing")
		}
	}
}

func TestGetCategory_NotFound(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, _ := doRequest(t, app, "GET", "/api/catalog/categories/999", "")
	if status != 404 {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestGetAchievement_IncludesUnlocks(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, body := doRequest(t, app, "GET", "/api/catalog/achievements/1", "")
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	unlocks, ok := body["unlocks"].([]interface{})
	if !ok || len(unlocks) != 1 || unlocks[0].(float64) != 2 {
		t.Errorf("unlocks = %v, want [2]", body["unlocks"])
	}
}

func TestSearchCatalog(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, _ := doRequest(t, app, "GET", "/api/catalog/search", "")
	if status != 400 {
		t.Errorf("missing q: status = %d, want 400", status)
	}

	status, body := doRequest(t, app, "GET", "/api/catalog/search?q=CHAMPION", "")
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	results := body["results"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0].(map[string]interface{})
	if r["name"] != "Champion of the Mists" {
		t.Errorf("result = %v", r["name"])
	}
}

func TestGetRecommendations(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, body := doRequest(t, app, "GET", "/api/recommendations", "")
	if status != 200 {
		t.Fatalf("status = %d (%v)", status, body["error"])
	}
	recs := body["recommendations"].([]interface{})
	// 1 is completed, 3 is periodic; only 2 is recommendable.
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	rec := recs[0].(map[string]interface{})
	a := rec["achievement"].(map[string]interface{})
	if a["id"].(float64) != 2 {
		t.Errorf("recommended id = %v, want 2", a["id"])
	}
	if rec["score"].(float64) <= 0 {
		t.Errorf("score = %v, want > 0", rec["score"])
	}
}

func TestGetRecommendations_UnknownFlavor(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, _ := doRequest(t, app, "GET", "/api/recommendations?flavor=nonsense", "")
	if status != 400 {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestAccountRoutes_RequireKey(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	req := httptest.NewRequest("GET", "/api/recommendations", nil)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 401 {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestGetRecommendations_CatalogNotLoaded(t *testing.T) {
	setupTestDB(t) // empty catalog: snapshot load fails, Current() stays nil
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, _ := doRequest(t, app, "GET", "/api/recommendations", "")
	if status != 503 {
		t.Errorf("status = %d, want 503", status)
	}
}

func TestGetChain_Statuses(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, body := doRequest(t, app, "GET", "/api/achievements/2/chain", "")
	if status != 200 {
		t.Fatalf("status = %d (%v)", status, body["error"])
	}
	chain := body["chain"].(map[string]interface{})
	entries := chain["entries"].([]interface{})
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0].(map[string]interface{})
	second := entries[1].(map[string]interface{})
	if first["status"] != "completed" {
		t.Errorf("entry 1 status = %v, want completed", first["status"])
	}
	if second["status"] != "current" {
		t.Errorf("entry 2 status = %v, want current", second["status"])
	}
}

func TestGetChain_UnknownAchievement(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, _ := doRequest(t, app, "GET", "/api/achievements/999/chain", "")
	if status != 404 {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestGetPlaystyle(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, body := doRequest(t, app, "GET", "/api/playstyle", "")
	if status != 200 {
		t.Fatalf("status = %d (%v)", status, body["error"])
	}
	// The only completion sits in a PvP category.
	if body["playstyle"] != "Battlemaster" {
		t.Errorf("playstyle = %v, want Battlemaster", body["playstyle"])
	}
	scores := body["scores"].(map[string]interface{})
	if scores["competitive"].(float64) <= 0 {
		t.Errorf("competitive score = %v, want > 0", scores["competitive"])
	}
}

func TestUpstreamFailure_MapsTo401(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"text":"invalid key"}`, http.StatusForbidden)
	}))
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, _ := doRequest(t, app, "GET", "/api/playstyle", "")
	if status != 401 {
		t.Errorf("status = %d, want 401", status)
	}
}

func TestPreferences_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, _ := doRequest(t, app, "POST", "/api/preferences",
		`{"client_id":"device-1","api_key":"abc","starred":[1,2],"compact_view":true}`)
	if status != 200 {
		t.Fatalf("save status = %d", status)
	}

	status, body := doRequest(t, app, "GET", "/api/preferences?client_id=device-1", "")
	if status != 200 {
		t.Fatalf("load status = %d", status)
	}
	pref := body["preferences"].(map[string]interface{})
	if pref["compact_view"] != true {
		t.Errorf("compact_view = %v, want true", pref["compact_view"])
	}
	starred := pref["starred"].([]interface{})
	if len(starred) != 2 {
		t.Errorf("starred = %v, want 2 entries", pref["starred"])
	}
}

func TestPreferences_MissingClientID(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, _ := doRequest(t, app, "GET", "/api/preferences", "")
	if status != 400 {
		t.Errorf("GET status = %d, want 400", status)
	}
	status, _ = doRequest(t, app, "POST", "/api/preferences", `{"starred":[]}`)
	if status != 400 {
		t.Errorf("POST status = %d, want 400", status)
	}
}

func TestGetSyncStatus_NoRuns(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	srv := fakeAccountAPI(t)
	defer srv.Close()
	app := newTestApp(t, srv.URL)

	status, _ := doRequest(t, app, "GET", "/api/sync/status", "")
	if status != 404 {
		t.Errorf("status = %d, want 404", status)
	}
}
