package game

// AutopilotChoice picks an action for a pending event choice without a
// player. overrides maps an event type to a preferred action and wins when
// that action is offered and affordable. Otherwise the first affordable
// choice that is not marked negative is taken, then any affordable one.
func AutopilotChoice(state GameState, ev GameEvent, overrides map[string]string) string {
	if !HasChoices(ev) {
		return ""
	}
	affordable := func(c EventChoice) bool { return c.Cost <= state.Cash }

	if want, ok := overrides[string(ev.Type)]; ok {
		for _, c := range ev.Choices {
			if c.Action == want && affordable(c) {
				return c.Action
			}
		}
	}
	for _, c := range ev.Choices {
		if c.Variant != "negative" && affordable(c) {
			return c.Action
		}
	}
	for _, c := range ev.Choices {
		if affordable(c) {
			return c.Action
		}
	}
	return ""
}
