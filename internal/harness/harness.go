package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/hindsight/internal/catalog"
	"github.com/roach88/hindsight/internal/engine"
	"github.com/roach88/hindsight/internal/game"
	"github.com/roach88/hindsight/internal/store"
	"github.com/roach88/hindsight/internal/testutil"
)

// scenarioStart is the frozen wall-clock time every scenario runs at.
var scenarioStart = time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

// Run executes a scenario against a real engine and returns the result.
//
// Each run gets a fresh store in a temp directory, a clock frozen at
// scenarioStart, and the scenario's fixed run token, so repeated runs of
// the same scenario produce identical traces.
func Run(scenario *Scenario) (*Result, error) {
	cat, err := catalog.BuiltIn()
	if err != nil {
		return nil, fmt.Errorf("load built-in catalog: %w", err)
	}

	dir, err := os.MkdirTemp("", "hindsight-harness-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	st := store.New(filepath.Join(dir, "storymode.json"))
	clock := testutil.NewClock(scenarioStart)
	eng, err := engine.New(cat, st,
		engine.WithNow(clock.Now),
		engine.WithTokenGenerator(engine.NewFixedGenerator(scenario.RunToken)),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	if _, err := eng.StartStory(scenario.Story); err != nil {
		return nil, fmt.Errorf("start story %q: %w", scenario.Story, err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := executeStep(eng, i, step, result); err != nil {
			return nil, err
		}
	}

	checkFinal(scenario, result)
	return result, nil
}

// executeStep runs one step, records its trace event, and validates the
// expect clause. Engine errors that carry a game error code are outcomes to
// assert on; anything else aborts the run.
func executeStep(eng *engine.Engine, i int, step Step, result *Result) error {
	res, err := eng.ExecuteAction(game.Action(step.Action), step.Quantity)
	if err != nil {
		code := engine.CodeOf(err)
		if code == "" {
			return fmt.Errorf("step %d: %w", i, err)
		}

		// Rejected actions leave the game untouched; snapshot the
		// unchanged position for the trace.
		status, serr := eng.Status()
		if serr != nil {
			return fmt.Errorf("step %d: read status after %s: %w", i, code, serr)
		}
		result.Trace = append(result.Trace, TraceEvent{
			Step:   i,
			Action: step.Action,
			Cash:   int64(status.Cash),
			Shares: status.Shares,
			Error:  string(code),
		})
		checkExpect(i, step.Expect, string(code), int64(status.Cash), status.Shares, result)
		return nil
	}

	event := TraceEvent{
		Step:     i,
		Action:   step.Action,
		Quantity: res.Quantity,
		Cash:     int64(res.Cash),
		Shares:   res.Shares,
	}
	if res.Price != nil {
		p := int64(*res.Price)
		event.Price = &p
	}
	if res.NextCheckpoint != nil {
		event.Next = res.NextCheckpoint.ID
	}
	result.Trace = append(result.Trace, event)

	if res.Scorecard != nil {
		result.Scorecard = res.Scorecard
	}
	checkExpect(i, step.Expect, "", int64(res.Cash), res.Shares, result)
	return nil
}

func checkExpect(i int, expect *ExpectClause, code string, cash, shares int64, result *Result) {
	if expect == nil {
		if code != "" {
			result.AddError(fmt.Sprintf("step %d: unexpected error %s", i, code))
		}
		return
	}

	if code != expect.Error {
		got := code
		if got == "" {
			got = "success"
		}
		want := expect.Error
		if want == "" {
			want = "success"
		}
		result.AddError(fmt.Sprintf("step %d: expected %s, got %s", i, want, got))
	}
	if expect.Cash != nil && cash != *expect.Cash {
		result.AddError(fmt.Sprintf("step %d: expected cash %d, got %d", i, *expect.Cash, cash))
	}
	if expect.Shares != nil && shares != *expect.Shares {
		result.AddError(fmt.Sprintf("step %d: expected shares %d, got %d", i, *expect.Shares, shares))
	}
}

func checkFinal(scenario *Scenario, result *Result) {
	if scenario.Final == nil {
		return
	}
	sc := result.Scorecard
	if sc == nil {
		result.AddError("final: scenario did not complete the story, no scorecard")
		return
	}

	if int64(sc.FinalNetValue) != scenario.Final.FinalNetValue {
		result.AddError(fmt.Sprintf("final: expected net value %d, got %d",
			scenario.Final.FinalNetValue, int64(sc.FinalNetValue)))
	}
	if int64(sc.BuyAndHold.FinalValue) != scenario.Final.BuyAndHoldFinalValue {
		result.AddError(fmt.Sprintf("final: expected buy-and-hold value %d, got %d",
			scenario.Final.BuyAndHoldFinalValue, int64(sc.BuyAndHold.FinalValue)))
	}
	if sc.TradeCount != scenario.Final.TradeCount {
		result.AddError(fmt.Sprintf("final: expected %d trades, got %d",
			scenario.Final.TradeCount, sc.TradeCount))
	}
}
