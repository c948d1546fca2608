package flow

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"nyaya/internal/session"
)

//go:embed intake.yaml
var intakeYAML []byte

// Slot is one named field of the intake dialogue.
type Slot struct {
	Key    string `yaml:"key"`
	Prompt string `yaml:"prompt"`
}

// Dialogue is the static ordered list of slots collected before
// confirmation. It is configuration, fixed at startup.
type Dialogue struct {
	Slots []Slot `yaml:"slots"`
}

// collectSteps maps the i-th slot to its collection step. The dialogue
// definition must provide exactly one slot per collection state.
var collectSteps = []session.Step{
	session.StepCollectIssue,
	session.StepCollectCounterpart,
	session.StepCollectAmount,
	session.StepCollectDate,
}

// LoadDialogue parses the embedded intake definition.
func LoadDialogue() (*Dialogue, error) {
	var d Dialogue
	if err := yaml.Unmarshal(intakeYAML, &d); err != nil {
		return nil, fmt.Errorf("parse intake definition: %w", err)
	}
	if len(d.Slots) != len(collectSteps) {
		return nil, fmt.Errorf("intake definition must have %d slots, found %d", len(collectSteps), len(d.Slots))
	}
	for i, s := range d.Slots {
		if strings.TrimSpace(s.Key) == "" || strings.TrimSpace(s.Prompt) == "" {
			return nil, fmt.Errorf("intake slot %d is missing key or prompt", i)
		}
	}
	return &d, nil
}

// slotIndex returns the slot position a collection step writes into,
// or -1 when the step does not collect.
func slotIndex(step session.Step) int {
	for i, s := range collectSteps {
		if s == step {
			return i
		}
	}
	return -1
}
