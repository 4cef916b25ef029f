package game

import "testing"

func TestAutopilotChoice(t *testing.T) {
	state := sampleState()
	state.Cash = 100
	keyMan := GameEvent{
		Type: EventKeyManRisk,
		Choices: []EventChoice{
			{Action: ActionRetentionBonus, Cost: 80, Variant: "positive"},
			{Action: ActionAcceptKeyManRisk, Variant: "negative"},
		},
	}

	tests := []struct {
		name      string
		cash      int64
		overrides map[string]string
		want      string
	}{
		{name: "first positive", cash: 100, want: ActionRetentionBonus},
		{name: "unaffordable falls back", cash: 50, want: ActionAcceptKeyManRisk},
		{name: "override wins", cash: 100, overrides: map[string]string{string(EventKeyManRisk): ActionAcceptKeyManRisk}, want: ActionAcceptKeyManRisk},
		{name: "unknown override ignored", cash: 100, overrides: map[string]string{string(EventKeyManRisk): "walk_away"}, want: ActionRetentionBonus},
		{name: "unaffordable override ignored", cash: 10, overrides: map[string]string{string(EventKeyManRisk): ActionRetentionBonus}, want: ActionAcceptKeyManRisk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state
			s.Cash = tt.cash
			if got := AutopilotChoice(s, keyMan, tt.overrides); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAutopilotChoiceNothingToPick(t *testing.T) {
	state := sampleState()
	if got := AutopilotChoice(state, GameEvent{Type: EventQuiet}, nil); got != "" {
		t.Fatalf("expected no action for a quiet event, got %q", got)
	}
	state.Cash = 0
	pricey := GameEvent{Choices: []EventChoice{{Action: ActionPayOffNote, Cost: 10}}}
	if got := AutopilotChoice(state, pricey, nil); got != "" {
		t.Fatalf("expected no affordable action, got %q", got)
	}
}
