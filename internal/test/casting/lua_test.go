//go:build scenario

package casting

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/ingest"
)

// scenarioScript is one Lua acceptance scenario: a roster, the query to
// run, and the expectations to assert against the result.
type scenarioScript struct {
	Name   string
	Query  string
	Roster *ingest.Roster
	Expect expectation
}

type assignedPair struct {
	Dancer string
	Piece  string
}

// expectation declares the asserted outcome. Zero-valued fields are not
// checked; TotalScore is a pointer so an expected zero still asserts.
type expectation struct {
	Status      string
	MaxTraceLen int
	TotalScore  *int
	Assigned    []assignedPair
	Unassigned  []string
	Headcounts  map[string]int
}

// loadScenarioFromFile runs a scenario script and decodes the table it
// returns.
func loadScenarioFromFile(path string) (*scenarioScript, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeTable {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return a table")
	}
	root := tableToMap(state, -1)
	state.Pop(1)

	scenario, err := decodeScenario(root)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func decodeScenario(root map[string]any) (*scenarioScript, error) {
	scenario := &scenarioScript{
		Name:  stringOf(root, "name"),
		Query: stringOf(root, "query"),
	}
	if scenario.Query != "feasible" && scenario.Query != "optimize" {
		return nil, fmt.Errorf("query must be feasible or optimize, got %q", scenario.Query)
	}

	rosterMap, ok := root["roster"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("scenario has no roster table")
	}
	roster, err := decodeRoster(rosterMap)
	if err != nil {
		return nil, err
	}
	scenario.Roster = roster

	expectMap, ok := root["expect"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("scenario has no expect table")
	}
	scenario.Expect = decodeExpectation(expectMap)
	return scenario, nil
}

func decodeRoster(m map[string]any) (*ingest.Roster, error) {
	roster := &ingest.Roster{Slots: stringsOf(m, "slots")}

	for i, entry := range tablesOf(m, "pieces") {
		spec := ingest.PieceSpec{
			ID:         stringOf(entry, "id"),
			Rehearsals: stringsOf(entry, "rehearsals"),
		}
		var ok bool
		if spec.MinDancers, ok = intOf(entry, "min_dancers"); !ok {
			return nil, fmt.Errorf("piece %d has no min_dancers", i+1)
		}
		if spec.MaxDancers, ok = intOf(entry, "max_dancers"); !ok {
			return nil, fmt.Errorf("piece %d has no max_dancers", i+1)
		}
		roster.Pieces = append(roster.Pieces, spec)
	}

	for _, entry := range tablesOf(m, "dancers") {
		roster.Dancers = append(roster.Dancers, ingest.DancerSpec{
			ID:           stringOf(entry, "id"),
			Availability: stringsOf(entry, "availability"),
			MustHave:     stringsOf(entry, "must_have"),
			Preferred:    stringsOf(entry, "preferred"),
			Avoid:        stringsOf(entry, "avoid"),
		})
	}

	if search, ok := m["search"].(map[string]any); ok {
		spec := &ingest.SearchSpec{}
		if v, ok := intOf(search, "min_steps"); ok {
			spec.MinSteps = &v
		}
		if v, ok := intOf(search, "max_steps"); ok {
			spec.MaxSteps = &v
		}
		roster.Search = spec
	}
	if policy, ok := m["policy"].(map[string]any); ok {
		spec := &ingest.PolicySpec{}
		if v, ok := intOf(policy, "fairness_bound"); ok {
			spec.FairnessBound = &v
		}
		if v, ok := policy["avoid_exception"].(bool); ok {
			spec.AvoidException = v
		}
		if v, ok := policy["require_full_cast"].(bool); ok {
			spec.RequireFullCast = v
		}
		if v, ok := policy["prune_unfair"].(bool); ok {
			spec.PruneUnfair = &v
		}
		roster.Policy = spec
	}
	return roster, nil
}

func decodeExpectation(m map[string]any) expectation {
	expect := expectation{
		Status:     stringOf(m, "status"),
		Unassigned: stringsOf(m, "unassigned"),
	}
	if v, ok := intOf(m, "max_trace_len"); ok {
		expect.MaxTraceLen = v
	}
	if v, ok := intOf(m, "total_score"); ok {
		expect.TotalScore = &v
	}
	for _, entry := range tablesOf(m, "assigned") {
		expect.Assigned = append(expect.Assigned, assignedPair{
			Dancer: stringOf(entry, "dancer"),
			Piece:  stringOf(entry, "piece"),
		})
	}
	if counts, ok := m["headcounts"].(map[string]any); ok {
		expect.Headcounts = make(map[string]int, len(counts))
		for piece, v := range counts {
			if n, ok := v.(int); ok {
				expect.Headcounts[piece] = n
			}
		}
	}
	return expect
}

func stringOf(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func intOf(m map[string]any, key string) (int, bool) {
	v, ok := m[key].(int)
	return v, ok
}

func stringsOf(m map[string]any, key string) []string {
	entries, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func tablesOf(m map[string]any, key string) []map[string]any {
	entries, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if t, ok := entry.(map[string]any); ok {
			out = append(out, t)
		}
	}
	return out
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
