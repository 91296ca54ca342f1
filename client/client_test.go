package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"combatsim/combat"
	"combatsim/dice"
	"combatsim/game"
	"combatsim/rules"
	"combatsim/server"
	"combatsim/simulator"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func units() []game.UnitDoc {
	return []game.UnitDoc{
		{
			ID: "sniper", ModelCount: 1,
			Meta: game.Meta{
				Stats: game.Stats{Toughness: 3, Save: 5, Wounds: 1},
				Weapons: []game.WeaponProfile{
					{ID: "rifle", Attacks: dice.Fixed(1), Skill: 2, Strength: 5, AP: -2, Damage: dice.Fixed(3), SpecialRules: "Heavy, Precision, Lethal Hits"},
				},
			},
		},
		{
			ID: "target", ModelCount: 5,
			Meta: game.Meta{Stats: game.Stats{Toughness: 4, Save: 3, Wounds: 2}},
		},
	}
}

func setup(t *testing.T) *Client {
	s := server.NewServer(game.NewBoard(), server.WithWorkers(2), server.WithLogger(zerolog.Nop()))
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL)
	require.NoError(t, c.ReplaceUnits(context.Background(), units()), "Units should load")
	return c
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("simulate", func(t *testing.T) {
		c := setup(t)
		cfg := simulator.Config{
			Trials:    100,
			Attackers: []simulator.AttackerConfig{{UnitID: "sniper"}},
			Defender:  simulator.DefenderConfig{UnitID: "target"},
			Seed:      5,
		}
		result, err := c.Simulate(ctx, cfg)
		require.NoError(t, err, "Simulation should succeed")
		require.Equal(t, 100, result.TrialsRun)

		again, err := c.Simulate(ctx, cfg)
		require.NoError(t, err)
		require.Equal(t, result.CumulativeDamage, again.CumulativeDamage, "Same seed should give the same damage")

		cfg.Defender.UnitID = "sniper"
		_, err = c.Simulate(ctx, cfg)
		var verr *simulator.ValidationError
		require.True(t, errors.As(err, &verr), "Invalid configuration should come back as a validation error")
		require.NotEmpty(t, verr.Errors)

		v, err := c.Validate(ctx, cfg)
		require.NoError(t, err)
		require.False(t, v.Valid, "A unit attacking itself is invalid")
	})

	t.Run("resolve and apply", func(t *testing.T) {
		c := setup(t)
		action := combat.Action{
			AttackerUnitID: "sniper",
			Assignments:    []combat.Assignment{{WeaponID: "rifle", TargetUnitID: "target"}},
		}
		resp, err := c.Resolve(ctx, combat.Shooting, action, 21, false)
		require.NoError(t, err)
		require.Equal(t, uint64(21), resp.Seed)
		require.False(t, resp.Applied)

		resp, err = c.Resolve(ctx, combat.Shooting, action, 21, true)
		require.NoError(t, err)
		require.True(t, resp.Applied, "Diffs should be applied on request")

		u, err := c.Unit(ctx, "target")
		require.NoError(t, err)
		remaining := 0
		for _, m := range u.Models {
			if m.Alive {
				remaining += m.CurrentWounds
			}
		}
		require.Equal(t, 10-resp.Outcome.Totals().DamageApplied, remaining, "Live board should reflect the applied damage")
	})

	t.Run("rules", func(t *testing.T) {
		c := setup(t)
		defs, err := c.Rules(ctx)
		require.NoError(t, err)
		require.Len(t, defs, len(rules.Default().All()))

		ids, err := c.UnitRules(ctx, "sniper")
		require.NoError(t, err)
		require.Contains(t, ids, rules.LethalHits, "Lethal hits should be detected on the rifle")
	})

	t.Run("not found", func(t *testing.T) {
		c := setup(t)
		_, err := c.Unit(ctx, "ghost")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr), "Missing unit should be an API error")
		require.Equal(t, http.StatusNotFound, apiErr.Status)
	})
}
