package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"combatsim/combat"
	"combatsim/dice"
	"combatsim/game"
	"combatsim/rules"
	"combatsim/simulator"
	"combatsim/stats"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func docs() []game.UnitDoc {
	return []game.UnitDoc{
		{
			ID: "flamers", ModelCount: 1,
			Meta: game.Meta{
				Stats: game.Stats{Toughness: 4, Save: 3, Wounds: 2},
				Weapons: []game.WeaponProfile{
					{ID: "flamer", Type: game.Ranged, Attacks: dice.Fixed(20), Strength: 9, Damage: dice.Fixed(3), SpecialRules: "Torrent, Ignores Cover"},
				},
			},
		},
		{
			ID: "grunt", ModelCount: 1,
			Meta: game.Meta{Stats: game.Stats{Toughness: 3, Wounds: 1}},
		},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	catalog, err := game.BuildCatalog(docs())
	require.NoError(t, err, "Fixture catalog should build")
	s := NewServer(catalog.Board(), WithWorkers(2), WithLogger(zerolog.Nop()))
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any, out any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body), "Request body should encode")
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err, "Request should build")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "Request should succeed")
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "Response body should decode")
	}
	return resp
}

func burn() combat.Action {
	return combat.Action{
		AttackerUnitID: "flamers",
		Assignments:    []combat.Assignment{{WeaponID: "flamer", TargetUnitID: "grunt"}},
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	var body map[string]string
	resp := do(t, ts, "GET", "/healthz", nil, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode, "Health check should succeed")
	require.Equal(t, "ok", body["status"], "Health check should report ok")
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"), "Every response should carry a request id")
}

func TestSimulate(t *testing.T) {
	_, ts := newTestServer(t)
	cfg := simulator.Config{
		Trials:    100,
		Attackers: []simulator.AttackerConfig{{UnitID: "flamers"}},
		Defender:  simulator.DefenderConfig{UnitID: "grunt"},
		Seed:      7,
	}

	t.Run("valid configuration returns the aggregate", func(t *testing.T) {
		var result stats.SimulationResult
		resp := do(t, ts, "POST", "/simulate", cfg, &result)
		require.Equal(t, http.StatusOK, resp.StatusCode, "Valid simulation should succeed")
		require.Equal(t, 100, result.TrialsRun, "Every trial should run")
		require.Equal(t, uint64(7), result.Seed, "Seed should be echoed")
		require.Equal(t, 1.0, result.KillProbability, "Twenty torrent attacks should always kill the grunt")
	})

	t.Run("invalid configuration returns the validation errors", func(t *testing.T) {
		bad := cfg
		bad.Trials = 5
		bad.Defender.UnitID = "nobody"
		var v rules.Validation
		resp := do(t, ts, "POST", "/simulate", bad, &v)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "Invalid simulation should be rejected")
		require.False(t, v.Valid, "Validation should fail")
		require.Len(t, v.Errors, 2, "Trial count and defender should both be reported")
	})

	t.Run("malformed body", func(t *testing.T) {
		req, err := http.NewRequest("POST", ts.URL+"/simulate", bytes.NewBufferString("{"))
		require.NoError(t, err, "Request should build")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "Request should succeed")
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "Malformed JSON should be rejected")
	})

	t.Run("validate only", func(t *testing.T) {
		var v rules.Validation
		resp := do(t, ts, "POST", "/simulate/validate", cfg, &v)
		require.Equal(t, http.StatusOK, resp.StatusCode, "Validation should succeed")
		require.True(t, v.Valid, "Configuration should be valid")
		require.Empty(t, v.Errors, "Valid configuration should have no errors")
	})
}

func TestResolve(t *testing.T) {
	t.Run("without apply the live board is untouched", func(t *testing.T) {
		s, ts := newTestServer(t)
		var out ResolveResponse
		resp := do(t, ts, "POST", "/resolve/shoot?seed=3", burn(), &out)
		require.Equal(t, http.StatusOK, resp.StatusCode, "Resolution should succeed")
		require.Equal(t, uint64(3), out.Seed, "Seed should be echoed")
		require.True(t, out.Outcome.Success, "Resolution should succeed")
		require.False(t, out.Applied, "Diffs should not be applied")
		require.NotEmpty(t, out.Outcome.Diffs, "The grunt should take damage")
		require.Equal(t, 1, s.Board().AliveModels("grunt"), "Live board should be unchanged")
	})

	t.Run("same seed gives the same outcome", func(t *testing.T) {
		_, ts := newTestServer(t)
		var a, b ResolveResponse
		do(t, ts, "POST", "/resolve/shoot?seed=11", burn(), &a)
		do(t, ts, "POST", "/resolve/shoot?seed=11", burn(), &b)
		require.Equal(t, a.Outcome, b.Outcome, "A seeded resolution should replay exactly")
	})

	t.Run("apply folds diffs into the live board", func(t *testing.T) {
		s, ts := newTestServer(t)
		var out ResolveResponse
		do(t, ts, "POST", "/resolve/shoot?apply=true", burn(), &out)
		require.True(t, out.Applied, "Diffs should be applied")
		require.Empty(t, out.Skipped, "No diff should be skipped")
		require.Equal(t, 0, s.Board().AliveModels("grunt"), "Grunt should be dead on the live board")

		var u game.Unit
		do(t, ts, "GET", "/units/grunt", nil, &u)
		require.False(t, u.Models[0].Alive, "Unit endpoint should report the live state")
	})

	t.Run("wrong phase for the weapon", func(t *testing.T) {
		_, ts := newTestServer(t)
		var out ResolveResponse
		resp := do(t, ts, "POST", "/resolve/fight", burn(), &out)
		require.Equal(t, http.StatusOK, resp.StatusCode, "Resolution errors are reported in the outcome")
		require.NotEmpty(t, out.Outcome.Errors, "A ranged weapon cannot fight")
	})

	t.Run("unknown phase", func(t *testing.T) {
		_, ts := newTestServer(t)
		resp := do(t, ts, "POST", "/resolve/psychic", burn(), nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, "Unknown phase should be rejected")
	})

	t.Run("bad seed", func(t *testing.T) {
		_, ts := newTestServer(t)
		resp := do(t, ts, "POST", "/resolve/shoot?seed=abc", burn(), nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "Bad seed should be rejected")
	})
}

func TestRules(t *testing.T) {
	_, ts := newTestServer(t)

	var all []rules.RuleDefinition
	do(t, ts, "GET", "/rules", nil, &all)
	require.Len(t, all, len(rules.Default().All()), "Every rule should be listed")

	var def rules.RuleDefinition
	resp := do(t, ts, "GET", "/rules/lethal_hits", nil, &def)
	require.Equal(t, http.StatusOK, resp.StatusCode, "Known rule should be found")
	require.Equal(t, rules.LethalHits, def.ID, "Rule id should round-trip")

	resp = do(t, ts, "GET", "/rules/made_up", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "Unknown rule should be a 404")

	var damage []rules.RuleDefinition
	do(t, ts, "GET", "/rules/category/damage", nil, &damage)
	require.Len(t, damage, 2, "Damage category should hold two rules")

	var none []rules.RuleDefinition
	do(t, ts, "GET", "/rules/category/psychic", nil, &none)
	require.Empty(t, none, "Unknown category should be empty")
}

func TestUnits(t *testing.T) {
	t.Run("unit rules", func(t *testing.T) {
		_, ts := newTestServer(t)
		var ids []rules.RuleID
		resp := do(t, ts, "GET", "/units/flamers/rules", nil, &ids)
		require.Equal(t, http.StatusOK, resp.StatusCode, "Known unit should be found")
		require.Contains(t, ids, rules.Torrent, "Torrent should be detected")
		require.Contains(t, ids, rules.IgnoresCover, "Ignores cover should be detected")
		require.Contains(t, ids, rules.HitPlus1, "Universal rules should be offered")

		resp = do(t, ts, "GET", "/units/nobody/rules", nil, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, "Unknown unit should be a 404")
	})

	t.Run("replace the live board", func(t *testing.T) {
		s, ts := newTestServer(t)
		replacement := []game.UnitDoc{{ID: "ork", ModelCount: 3, Meta: game.Meta{Stats: game.Stats{Toughness: 5, Wounds: 1}}}}
		resp := do(t, ts, "PUT", "/units", replacement, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "Replacement should succeed")
		require.Equal(t, []string{"ork"}, s.Board().IDs(), "Board should hold only the new unit")

		var units []game.Unit
		do(t, ts, "GET", "/units", nil, &units)
		require.Len(t, units, 1, "Units endpoint should list the new board")
		require.Len(t, units[0].Models, 3, "Models should be generated from the count")
	})

	t.Run("duplicate ids are rejected", func(t *testing.T) {
		s, ts := newTestServer(t)
		dup := append(docs(), docs()[0])
		resp := do(t, ts, "PUT", "/units", dup, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "Duplicate unit ids should be rejected")
		require.Equal(t, []string{"flamers", "grunt"}, s.Board().IDs(), "Board should be unchanged")
	})
}
