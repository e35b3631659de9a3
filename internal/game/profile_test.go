package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestParseProfile_PriorityOrder(t *testing.T) {
	src := `
name: Test General
personality:
  aggression: 0.5
  caution: 0.5
rules:
  - name: low
    priority: 1
    when: "true"
    action: engage
  - name: high
    priority: 10
    when: EnemyUnits > OwnUnits
    action: hold
`
	p, err := ParseProfile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseProfile: %v", err)
	}
	if p.Rules[0].Name != "high" {
		t.Fatalf("rules not sorted by priority: %s first", p.Rules[0].Name)
	}

	d, rule := p.Decide(DecisionEnv{OwnUnits: 2, EnemyUnits: 5})
	if d != DecisionHold || rule != "high" {
		t.Fatalf("outnumbered: got %s via %q", d, rule)
	}
	d, rule = p.Decide(DecisionEnv{OwnUnits: 5, EnemyUnits: 2})
	if d != DecisionEngage || rule != "low" {
		t.Fatalf("outnumbering: got %s via %q", d, rule)
	}
}

func TestParseProfile_DefaultRuleIsAggressionGate(t *testing.T) {
	p, err := ParseProfile(strings.NewReader("personality:\n  aggression: 0.75\n"))
	if err != nil {
		t.Fatalf("ParseProfile: %v", err)
	}
	if p.Name != "Unnamed General" || len(p.Rules) != 1 {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if d, _ := p.Decide(DecisionEnv{Aggression: 0.75}); d != DecisionEngage {
		t.Fatal("aggression 0.75 should pass the gate")
	}
	if d, _ := p.Decide(DecisionEnv{Aggression: 0.74}); d != DecisionHold {
		t.Fatal("aggression 0.74 should fail the gate")
	}
}

func TestParseProfile_Errors(t *testing.T) {
	cases := map[string]string{
		"bad action":     "rules:\n  - name: r\n    when: \"true\"\n    action: retreat\n",
		"not a bool":     "rules:\n  - name: r\n    when: OwnUnits + 1\n    action: engage\n",
		"unknown field":  "rules:\n  - name: r\n    when: NoSuchField > 1\n    action: engage\n",
		"unknown key":    "temper: 3\n",
		"malformed yaml": "rules: [",
	}
	for name, src := range cases {
		if _, err := ParseProfile(strings.NewReader(src)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestProfile_InertNeverActs(t *testing.T) {
	p := InertProfile("nobody")
	if d, rule := p.Decide(DecisionEnv{Aggression: 1, HasTarget: true}); d != DecisionHold || rule != "" {
		t.Fatalf("inert profile decided %s via %q", d, rule)
	}
	var nilProfile *Profile
	if d, _ := nilProfile.Decide(DecisionEnv{}); d != DecisionHold {
		t.Fatal("nil profile should hold")
	}
}

func TestLoadProfile_Embedded(t *testing.T) {
	for _, name := range []string{"aggressive_general", "cautious_general", "passive_general"} {
		p := LoadProfile("", name, zap.NewNop())
		if p.Inert {
			t.Errorf("%s: embedded profile loaded as inert", name)
		}
	}

	cautious := LoadProfile("", "cautious_general", nil)
	env := DecisionEnv{Caution: 0.7, HasTarget: true, OwnStrength: 10, EnemyStrength: 20}
	if d, rule := cautious.Decide(env); d != DecisionHold || rule != "refuse-bad-odds" {
		t.Fatalf("cautious vs stronger enemy: %s via %q", d, rule)
	}
	env.EnemyStrength = 5
	if d, _ := cautious.Decide(env); d != DecisionEngage {
		t.Fatal("cautious vs weaker enemy should engage")
	}

	passive := LoadProfile("", "passive_general", nil)
	if d, _ := passive.Decide(DecisionEnv{Aggression: passive.Personality.Aggression, HasTarget: true}); d != DecisionHold {
		t.Fatal("passive general should hold")
	}
}

func TestLoadProfile_MissingOrBrokenIsInert(t *testing.T) {
	if p := LoadProfile("", "no_such_general", nil); !p.Inert || p.Name != "no_such_general" {
		t.Fatalf("missing embedded profile: %+v", p)
	}

	dir := t.TempDir()
	if p := LoadProfile(dir, "absent", nil); !p.Inert {
		t.Fatal("missing file should give an inert profile")
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("rules:\n  - when: \"(\"\n    action: engage\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p := LoadProfile(dir, "broken", nil); !p.Inert {
		t.Fatal("malformed profile should give an inert profile")
	}
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte("name: Custom\nrules:\n  - name: go\n    when: HasTarget\n    action: engage\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p := LoadProfile(dir, "custom", nil); p.Inert || p.Name != "Custom" {
		t.Fatalf("custom profile: %+v", p)
	}
}
