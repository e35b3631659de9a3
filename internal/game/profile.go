package game

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// defaultEngageRule is used by profiles that define no rules of their own.
const defaultEngageRule = "Aggression >= 0.75"

// Decision is what a general's rules resolve to.
type Decision int

const (
	DecisionHold Decision = iota
	DecisionEngage
)

func (d Decision) String() string {
	if d == DecisionEngage {
		return "engage"
	}
	return "hold"
}

func parseDecision(s string) (Decision, error) {
	switch s {
	case "engage":
		return DecisionEngage, nil
	case "hold":
		return DecisionHold, nil
	default:
		return DecisionHold, fmt.Errorf("unknown action %q", s)
	}
}

// DecisionEnv is the environment rule conditions are evaluated against.
type DecisionEnv struct {
	Aggression    float64
	Caution       float64
	OwnUnits      int
	OwnStrength   float64
	EnemyUnits    int
	EnemyStrength float64
	EnemyDistance float64
	HasTarget     bool
}

// Personality holds the tunable character traits of a general.
type Personality struct {
	Aggression float64 `yaml:"aggression"`
	Caution    float64 `yaml:"caution"`
}

// ProfileRule is one prioritised condition -> action pair.
type ProfileRule struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	When     string `yaml:"when"`
	Action   string `yaml:"action"`

	decision Decision
	program  *vm.Program
}

// Profile describes how a general thinks. An inert profile never acts.
type Profile struct {
	Name        string         `yaml:"name"`
	Personality Personality    `yaml:"personality"`
	Rules       []*ProfileRule `yaml:"rules"`

	Inert bool `yaml:"-"`
}

// ParseProfile decodes and compiles a profile. Rules are sorted by
// descending priority; a profile without rules gets the aggression gate.
func ParseProfile(r io.Reader) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.Name == "" {
		p.Name = "Unnamed General"
	}
	if len(p.Rules) == 0 {
		p.Rules = []*ProfileRule{{Name: "aggression-gate", When: defaultEngageRule, Action: "engage"}}
	}
	if err := compileProfileRules(p.Rules); err != nil {
		return nil, err
	}
	return &p, nil
}

func compileProfileRules(rules []*ProfileRule) error {
	for _, r := range rules {
		d, err := parseDecision(r.Action)
		if err != nil {
			return fmt.Errorf("rule %q: %w", r.Name, err)
		}
		prog, err := expr.Compile(r.When, expr.Env(DecisionEnv{}), expr.AsBool())
		if err != nil {
			return fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.decision = d
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return nil
}

// InertProfile returns a profile that never engages.
func InertProfile(name string) *Profile {
	return &Profile{Name: name, Inert: true}
}

// Decide runs the rules highest priority first. The first rule that matches
// decides; no match (or an inert profile) means hold. Evaluation errors skip
// the rule.
func (p *Profile) Decide(env DecisionEnv) (Decision, string) {
	if p == nil || p.Inert {
		return DecisionHold, ""
	}
	for _, r := range p.Rules {
		if r.program == nil {
			continue
		}
		out, err := vm.Run(r.program, env)
		if err != nil {
			continue
		}
		if match, ok := out.(bool); ok && match {
			return r.decision, r.Name
		}
	}
	return DecisionHold, ""
}

// LoadProfile reads <name>.yaml from dir, or from the embedded profiles when
// dir is empty. It never fails: a missing or malformed profile is logged and
// an inert profile is returned.
func LoadProfile(dir, name string, log *zap.Logger) *Profile {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := readProfile(dir, name)
	if err != nil {
		log.Error("AI profile unavailable, general will be inert",
			zap.String("profile", name), zap.Error(err))
		return InertProfile(name)
	}
	p, err := ParseProfile(bytes.NewReader(data))
	if err != nil {
		log.Error("AI profile malformed, general will be inert",
			zap.String("profile", name), zap.Error(err))
		return InertProfile(name)
	}
	log.Debug("AI profile loaded", zap.String("profile", name), zap.Int("rules", len(p.Rules)))
	return p
}

func readProfile(dir, name string) ([]byte, error) {
	file := name + ".yaml"
	if dir == "" {
		data, err := fs.ReadFile(dataFS, "data/profiles/"+file)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		return data, err
	}
	return os.ReadFile(filepath.Join(dir, file))
}
