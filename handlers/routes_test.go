package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"team-pairing-system/matchup"
	"team-pairing-system/models"
	"team-pairing-system/services"
	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	testToken    = "svc-token"
	testPassword = "hunter2"
)

type testEnv struct {
	app    *fiber.App
	layout string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := utils.OpenDB("", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	dir := t.TempDir()
	for _, name := range []string{"ha1.png", "ha2.png", "sd1.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	layouts := services.NewLayoutService(services.DirLayoutSource{Dir: dir}, dir)
	if err := layouts.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	drafts := services.NewMemoryDraftStore()
	sessions := session.New()
	app := NewApp(nil, Deps{
		Sessions:     sessions,
		ServiceToken: testToken,
		Auth:         services.NewAuthService("Les Ours", testPassword, sessions),
		Players:      services.NewPlayerService(db),
		Games:        services.NewGameService(db, drafts),
		Matrix:       services.NewMatrixService(db),
		Pairing:      services.NewPairingService(db, drafts, layouts, services.NewOptimizerClient("", "", 0)),
		Layouts:      layouts,
		Report:       services.NewReportService(db),
	})
	return &testEnv{app: app, layout: dir}
}

func (e *testEnv) send(t *testing.T, req *http.Request, out any) int {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL.Path, raw, err)
		}
	}
	return resp.StatusCode
}

// call sends an authenticated JSON request and decodes the response into out.
func (e *testEnv) call(t *testing.T, method, path string, body, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	return e.send(t, req, out)
}

func (e *testEnv) createPlayer(t *testing.T, name string, active bool) int {
	t.Helper()
	var p struct {
		ID int `json:"id"`
	}
	if code := e.call(t, "POST", "/api/players", fiber.Map{"name": name, "active": active}, &p); code != fiber.StatusCreated {
		t.Fatalf("create player %s: status %d", name, code)
	}
	return p.ID
}

func (e *testEnv) createGame(t *testing.T, opponent string, factions ...string) int {
	t.Helper()
	armies := []fiber.Map{}
	for _, f := range factions {
		armies = append(armies, fiber.Map{"faction": f, "list": f + " list"})
	}
	var g struct {
		ID   int    `json:"id"`
		Slug string `json:"slug"`
	}
	if code := e.call(t, "POST", "/api/games", fiber.Map{"opponent_name": opponent, "armies": armies}, &g); code != fiber.StatusCreated {
		t.Fatalf("create game: status %d", code)
	}
	return g.ID
}

func gamePath(id int, rest string) string {
	return "/api/games/" + strconv.Itoa(id) + rest
}

type fightResponse struct {
	Scenario string `json:"scenario"`
	Dirty    bool   `json:"dirty"`
	Version  int64  `json:"version"`
	Slots    []struct {
		GameNo    int  `json:"game_no"`
		PlayerID  *int `json:"player_id"`
		ArmyIndex *int `json:"army_index"`
		LayoutN   *int `json:"layout_n"`
		RealScore *int `json:"real_score"`
	} `json:"slots"`
	Summary struct {
		FilledCount int `json:"filled_count"`
		TotalReal   int `json:"total_real"`
	} `json:"summary"`
	Error         string `json:"error"`
	ConfirmNeeded bool   `json:"confirm_required"`
	WouldClear    int    `json:"would_clear"`
}

func TestTeamLogin(t *testing.T) {
	e := newTestEnv(t)

	if code := e.send(t, httptest.NewRequest("GET", "/healthz", nil), nil); code != fiber.StatusOK {
		t.Fatalf("healthz = %d", code)
	}
	if code := e.send(t, httptest.NewRequest("GET", "/api/players", nil), nil); code != fiber.StatusUnauthorized {
		t.Fatalf("anonymous players = %d, want 401", code)
	}

	login := func(password string) *http.Response {
		req := httptest.NewRequest("POST", "/api/login", bytes.NewBufferString(`{"password":"`+password+`"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := e.app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}
	if resp := login("wrong"); resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("bad password = %d", resp.StatusCode)
	}

	resp := login(testPassword)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login = %d", resp.StatusCode)
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no session cookie")
	}

	req := httptest.NewRequest("GET", "/api/players", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	if code := e.send(t, req, nil); code != fiber.StatusOK {
		t.Fatalf("players with session = %d", code)
	}

	req = httptest.NewRequest("GET", "/api/session", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	var status struct {
		TeamName string `json:"team_name"`
		LoggedIn bool   `json:"logged_in"`
	}
	e.send(t, req, &status)
	if !status.LoggedIn || status.TeamName != "Les Ours" {
		t.Fatalf("session = %+v", status)
	}
}

func TestActivePlayerCap(t *testing.T) {
	e := newTestEnv(t)
	for i := 0; i < 8; i++ {
		e.createPlayer(t, "Player "+strconv.Itoa(i+1), true)
	}

	var body struct {
		Error string `json:"error"`
	}
	code := e.call(t, "POST", "/api/players", fiber.Map{"name": "Ninth", "active": true}, &body)
	if code != fiber.StatusBadRequest || body.Error != "You can only activate 8 players." {
		t.Fatalf("ninth active = %d %q", code, body.Error)
	}

	bench := e.createPlayer(t, "Bench", false)
	code = e.call(t, "POST", "/api/players/"+strconv.Itoa(bench)+"/active", fiber.Map{"active": true}, &body)
	if code != fiber.StatusBadRequest {
		t.Fatalf("activate bench = %d", code)
	}

	var active []struct {
		ID int `json:"id"`
	}
	e.call(t, "GET", "/api/players?active=true", nil, &active)
	if len(active) != 8 {
		t.Fatalf("active players = %d", len(active))
	}
}

func TestPlayerListsAndSearch(t *testing.T) {
	e := newTestEnv(t)
	id := e.createPlayer(t, "Zoé Müller", false)
	base := "/api/players/" + strconv.Itoa(id)

	var p struct {
		Lists        []string `json:"lists"`
		DefaultIndex *int     `json:"default_index"`
	}
	e.call(t, "POST", base+"/lists", fiber.Map{"text": "Necrons\n2000pts"}, &p)
	e.call(t, "POST", base+"/lists", fiber.Map{"text": "Orks"}, &p)
	if len(p.Lists) != 2 || p.DefaultIndex == nil || *p.DefaultIndex != 0 {
		t.Fatalf("after adding lists: %+v", p)
	}
	e.call(t, "POST", base+"/default_list", fiber.Map{"index": 1}, &p)
	e.call(t, "DELETE", base+"/lists/0", nil, &p)
	if len(p.Lists) != 1 || p.Lists[0] != "Orks" || p.DefaultIndex == nil || *p.DefaultIndex != 0 {
		t.Fatalf("after removing first list: %+v", p)
	}

	var found []struct {
		ID int `json:"id"`
	}
	e.call(t, "GET", "/api/players?q=zoe", nil, &found)
	if len(found) != 1 || found[0].ID != id {
		t.Fatalf("accent-insensitive search = %+v", found)
	}
}

func TestCreateGameValidation(t *testing.T) {
	e := newTestEnv(t)

	cases := []struct {
		name string
		body fiber.Map
		want string
	}{
		{"no opponent", fiber.Map{"opponent_name": " ", "armies": []fiber.Map{{"faction": "Orks", "list": "x"}}}, "Opponent name is required"},
		{"no armies", fiber.Map{"opponent_name": "Rivals", "armies": []fiber.Map{}}, "You must define between 1 and 8 armies"},
		{"missing list", fiber.Map{"opponent_name": "Rivals", "armies": []fiber.Map{{"faction": "Orks", "list": ""}}}, "Each army needs a faction and a list text"},
		{"duplicate faction", fiber.Map{"opponent_name": "Rivals", "armies": []fiber.Map{{"faction": "Orks", "list": "a"}, {"faction": "Orks", "list": "b"}}}, "Each faction must be unique (no duplicates)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body struct {
				Error string `json:"error"`
			}
			code := e.call(t, "POST", "/api/games", tc.body, &body)
			if code != fiber.StatusBadRequest || body.Error != tc.want {
				t.Fatalf("got %d %q, want 400 %q", code, body.Error, tc.want)
			}
		})
	}

	id := e.createGame(t, "Ork Boyz", "Orks")
	var g struct {
		Slug string `json:"slug"`
	}
	e.call(t, "GET", gamePath(id, ""), nil, &g)
	if g.Slug != "ork-boyz-"+strconv.Itoa(id) {
		t.Fatalf("slug = %q", g.Slug)
	}
}

func TestGameSoftDeleteAndRestore(t *testing.T) {
	e := newTestEnv(t)
	id := e.createGame(t, "Rivals", "Orks")

	if code := e.call(t, "DELETE", gamePath(id, ""), nil, nil); code != fiber.StatusOK {
		t.Fatalf("delete = %d", code)
	}
	if code := e.call(t, "GET", gamePath(id, ""), nil, nil); code != fiber.StatusNotFound {
		t.Fatalf("get deleted = %d", code)
	}
	if code := e.call(t, "POST", gamePath(id, "/restore"), nil, nil); code != fiber.StatusOK {
		t.Fatalf("restore = %d", code)
	}
	if code := e.call(t, "GET", gamePath(id, ""), nil, nil); code != fiber.StatusOK {
		t.Fatalf("get restored = %d", code)
	}
	if code := e.call(t, "POST", gamePath(id, "/restore"), nil, nil); code != fiber.StatusBadRequest {
		t.Fatalf("restore live game = %d", code)
	}
}

func TestMatrixSaveAndCycle(t *testing.T) {
	e := newTestEnv(t)
	p1 := e.createPlayer(t, "Alice", true)
	id := e.createGame(t, "Rivals", "Orks", "Eldar")

	var saved struct {
		Matrix map[string]string `json:"matrix"`
		Error  string            `json:"error"`
	}
	entries := []fiber.Map{{"player_id": p1, "army_index": 0, "value": "WIN"}}
	if code := e.call(t, "POST", gamePath(id, "/matrix"), fiber.Map{"entries": entries}, &saved); code != fiber.StatusOK {
		t.Fatalf("save matrix = %d", code)
	}

	bad := []fiber.Map{{"player_id": p1, "army_index": 0, "value": "NONE"}}
	if code := e.call(t, "POST", gamePath(id, "/matrix"), fiber.Map{"entries": bad}, &saved); code != fiber.StatusBadRequest || saved.Error != "Invalid state NONE" {
		t.Fatalf("NONE entry = %d %q", code, saved.Error)
	}
	outOfRange := []fiber.Map{{"player_id": p1, "army_index": 2, "value": "WIN"}}
	if code := e.call(t, "POST", gamePath(id, "/matrix"), fiber.Map{"entries": outOfRange}, nil); code != fiber.StatusBadRequest {
		t.Fatalf("army out of range = %d", code)
	}

	var cell struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	e.call(t, "POST", gamePath(id, "/matrix/cycle"), fiber.Map{"player_id": p1, "army_index": 1}, &cell)
	if cell.Value != "GAMBLE" || cell.Key != strconv.Itoa(p1)+"-1" {
		t.Fatalf("first cycle = %+v", cell)
	}
	e.call(t, "POST", gamePath(id, "/matrix/cycle"), fiber.Map{"player_id": p1, "army_index": 1}, &cell)
	if cell.Value != "UNKNOWN" {
		t.Fatalf("second cycle = %+v", cell)
	}

	var view struct {
		Matrix  map[string]string `json:"matrix"`
		Players []struct {
			ID int `json:"id"`
		} `json:"players"`
	}
	e.call(t, "GET", gamePath(id, "/matrix"), nil, &view)
	if view.Matrix[strconv.Itoa(p1)+"-0"] != "WIN" || view.Matrix[strconv.Itoa(p1)+"-1"] != "UNKNOWN" {
		t.Fatalf("matrix = %v", view.Matrix)
	}
	if len(view.Players) != 1 || view.Players[0].ID != p1 {
		t.Fatalf("players = %+v", view.Players)
	}
}

func TestMatrixCycleConcurrentClicksStack(t *testing.T) {
	e := newTestEnv(t)
	p1 := e.createPlayer(t, "Alice", true)
	id := e.createGame(t, "Rivals", "Orks")

	const clicks = 4
	var wg sync.WaitGroup
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, _ := json.Marshal(fiber.Map{"player_id": p1, "army_index": 0})
			req := httptest.NewRequest("POST", gamePath(id, "/matrix/cycle"), bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+testToken)
			if resp, err := e.app.Test(req, -1); err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	want := matchup.None
	for i := 0; i < clicks; i++ {
		want = matchup.Next(want)
	}
	var view struct {
		Matrix map[string]string `json:"matrix"`
	}
	e.call(t, "GET", gamePath(id, "/matrix"), nil, &view)
	if got := view.Matrix[strconv.Itoa(p1)+"-0"]; got != string(want) {
		t.Fatalf("after %d clicks cell = %q, want %q", clicks, got, want)
	}
}

func TestFightFlow(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createPlayer(t, "Alice", true)
	bob := e.createPlayer(t, "Bob", true)
	bench := e.createPlayer(t, "Bench", false)
	id := e.createGame(t, "Rivals", "Orks", "Eldar")

	var v fightResponse
	if code := e.call(t, "POST", gamePath(id, "/fight/assign"), fiber.Map{"game_no": 1, "player_id": alice, "army_index": 0}, &v); code != fiber.StatusBadRequest {
		t.Fatalf("assign without scenario = %d", code)
	}

	if code := e.call(t, "POST", gamePath(id, "/fight/scenario"), fiber.Map{"scenario": "HAMMER_ANVIL"}, &v); code != fiber.StatusOK {
		t.Fatalf("set scenario = %d %s", code, v.Error)
	}
	e.call(t, "POST", gamePath(id, "/fight/assign"), fiber.Map{"game_no": 1, "player_id": alice, "army_index": 0}, &v)
	e.call(t, "POST", gamePath(id, "/fight/assign"), fiber.Map{"game_no": 2, "player_id": alice, "army_index": 1}, &v)
	if v.Slots[0].PlayerID != nil || *v.Slots[1].PlayerID != alice {
		t.Fatalf("player should have moved to game 2: %+v", v.Slots[:2])
	}
	e.call(t, "POST", gamePath(id, "/fight/assign"), fiber.Map{"game_no": 1, "player_id": bob, "army_index": 0}, &v)
	if !v.Dirty || v.Summary.FilledCount != 2 {
		t.Fatalf("after assigns: dirty=%v filled=%d", v.Dirty, v.Summary.FilledCount)
	}

	if code := e.call(t, "POST", gamePath(id, "/fight/assign"), fiber.Map{"game_no": 3, "player_id": bench, "army_index": 0}, &v); code != fiber.StatusBadRequest {
		t.Fatalf("assign inactive player = %d", code)
	}

	e.call(t, "POST", gamePath(id, "/fight/layout"), fiber.Map{"game_no": 1, "layout_n": 1}, &v)
	if code := e.call(t, "POST", gamePath(id, "/fight/layout"), fiber.Map{"game_no": 2, "layout_n": 1}, &v); code != fiber.StatusConflict {
		t.Fatalf("taken layout = %d", code)
	}
	if code := e.call(t, "POST", gamePath(id, "/fight/layout"), fiber.Map{"game_no": 2, "layout_n": 9}, &v); code != fiber.StatusBadRequest {
		t.Fatalf("unknown layout = %d", code)
	}

	code := e.call(t, "POST", gamePath(id, "/fight/scenario"), fiber.Map{"scenario": "SEEK_DESTROY"}, &v)
	if code != fiber.StatusConflict || !v.ConfirmNeeded || v.WouldClear != 1 {
		t.Fatalf("unconfirmed switch = %d confirm=%v clear=%d", code, v.ConfirmNeeded, v.WouldClear)
	}
	v = fightResponse{}
	e.call(t, "POST", gamePath(id, "/fight/scenario"), fiber.Map{"scenario": "SEEK_DESTROY", "confirm": true}, &v)
	if v.Scenario != "SEEK_DESTROY" || v.Slots[0].LayoutN != nil || *v.Slots[0].PlayerID != bob {
		t.Fatalf("confirmed switch: scenario=%s slot1=%+v", v.Scenario, v.Slots[0])
	}

	e.call(t, "POST", gamePath(id, "/fight/score"), fiber.Map{"game_no": 1, "real_score": 25}, &v)
	if v.Slots[0].RealScore == nil || *v.Slots[0].RealScore != 20 {
		t.Fatalf("score not clamped: %+v", v.Slots[0])
	}

	if code := e.call(t, "POST", gamePath(id, "/fight/save"), nil, &v); code != fiber.StatusOK || v.Dirty {
		t.Fatalf("save = %d dirty=%v", code, v.Dirty)
	}

	var saved struct {
		Scenario *string `json:"scenario"`
		Pairings []struct {
			GameNo   int  `json:"game_no"`
			PlayerID *int `json:"player_id"`
		} `json:"pairings"`
	}
	e.call(t, "GET", gamePath(id, "/pairings"), nil, &saved)
	if saved.Scenario == nil || *saved.Scenario != "SEEK_DESTROY" || len(saved.Pairings) != 8 {
		t.Fatalf("persisted = %+v", saved)
	}
	if saved.Pairings[0].PlayerID == nil || *saved.Pairings[0].PlayerID != bob {
		t.Fatalf("persisted slot 1 = %+v", saved.Pairings[0])
	}

	var report struct {
		Players []struct {
			PlayerID    int      `json:"player_id"`
			GamesPlayed int      `json:"games_played"`
			AvgScore    *float64 `json:"avg_score"`
		} `json:"players"`
	}
	e.call(t, "GET", "/api/report", nil, &report)
	if len(report.Players) != 2 || report.Players[0].PlayerID != bob || *report.Players[0].AvgScore != 20 {
		t.Fatalf("report = %+v", report.Players)
	}
	if code := e.call(t, "GET", "/api/report?sort=nope", nil, nil); code != fiber.StatusBadRequest {
		t.Fatalf("bad sort = %d", code)
	}

	// a new edit then discard returns to the saved board
	e.call(t, "POST", gamePath(id, "/fight/clear"), fiber.Map{"game_no": 1}, &v)
	e.call(t, "POST", gamePath(id, "/fight/discard"), nil, &v)
	if v.Dirty || v.Slots[0].PlayerID == nil {
		t.Fatalf("discard should restore the saved board: %+v", v.Slots[0])
	}
}

func TestSavePairingsRejectsDuplicates(t *testing.T) {
	e := newTestEnv(t)
	id := e.createGame(t, "Rivals", "Orks", "Eldar")
	one, zero := 1, 0
	payload := fiber.Map{
		"scenario": "HAMMER_ANVIL",
		"pairings": []fiber.Map{
			{"game_no": 1, "player_id": one, "army_index": zero},
			{"game_no": 2, "player_id": one, "army_index": 1},
		},
	}
	if code := e.call(t, "POST", gamePath(id, "/pairings"), payload, nil); code != fiber.StatusBadRequest {
		t.Fatalf("duplicate player = %d", code)
	}
}

func TestOptimizeDisabled(t *testing.T) {
	e := newTestEnv(t)
	id := e.createGame(t, "Rivals", "Orks")
	if code := e.call(t, "GET", gamePath(id, "/optimize"), nil, nil); code != fiber.StatusServiceUnavailable {
		t.Fatalf("optimize = %d", code)
	}
}

func TestLayouts(t *testing.T) {
	e := newTestEnv(t)

	var inv struct {
		Layouts map[string][]struct {
			N int `json:"n"`
		} `json:"layouts"`
		Source string `json:"source"`
	}
	e.call(t, "GET", "/api/layouts", nil, &inv)
	if inv.Source != "dir" || len(inv.Layouts["HAMMER_ANVIL"]) != 2 || len(inv.Layouts["SEEK_DESTROY"]) != 1 {
		t.Fatalf("inventory = %+v", inv)
	}

	if code := e.call(t, "GET", "/layouts/ha1.png", nil, nil); code != fiber.StatusOK {
		t.Fatalf("serve layout = %d", code)
	}
	if code := e.call(t, "GET", "/layouts/notes.txt", nil, nil); code != fiber.StatusNotFound {
		t.Fatalf("serve non-layout = %d", code)
	}
	if code := e.call(t, "GET", "/layouts/tp4.png", nil, nil); code != fiber.StatusNotFound {
		t.Fatalf("serve missing layout = %d", code)
	}
}

func TestImportLayouts(t *testing.T) {
	e := newTestEnv(t)

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	for _, name := range []string{"maps/HA3.png", "maps/readme.txt", "dow1.png"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte("png"))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("archive", "Layouts Pack.zip")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(archive.Bytes())
	mw.Close()

	upload := func(token string) *http.Request {
		req := httptest.NewRequest("POST", "/api/layouts/import", bytes.NewReader(body.Bytes()))
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req
	}

	if code := e.send(t, upload(""), nil); code != fiber.StatusUnauthorized {
		t.Fatalf("import without token = %d", code)
	}

	var out struct {
		Imported []string `json:"imported"`
		Layouts  map[string][]struct {
			N int `json:"n"`
		} `json:"layouts"`
	}
	if code := e.send(t, upload(testToken), &out); code != fiber.StatusCreated {
		t.Fatalf("import = %d", code)
	}
	if len(out.Imported) != 2 {
		t.Fatalf("imported = %v", out.Imported)
	}
	if len(out.Layouts["HAMMER_ANVIL"]) != 3 || len(out.Layouts["DAWN_OF_WAR"]) != 1 {
		t.Fatalf("inventory after import = %+v", out.Layouts)
	}
	if _, err := os.Stat(filepath.Join(e.layout, "HA3.png")); err != nil {
		t.Fatalf("imported file missing: %v", err)
	}
}
