package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

const ruleFuncName = "Rules"

// LoadRuleDir evaluates every .go file in dir with yaegi and collects the
// pattern rules declared via Rules() ([]map[string]any). A missing directory
// means no custom rules.
func LoadRuleDir(dir string) ([]Rule, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lint: read %s: %w", trimmed, err)
	}
	var rules []Rule
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		fileRules, err := loadRuleFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	if len(rules) == 0 {
		return nil, nil
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID() < rules[j].ID() })
	return rules, nil
}

func loadRuleFile(path string) ([]Rule, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lint: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("lint: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("lint: interpreter setup for %s: %w", path, err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("lint: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(ruleFuncName)
	if err != nil {
		return nil, fmt.Errorf("lint: %s must define %s() []map[string]any: %w", path, ruleFuncName, err)
	}
	raw, err := invokeRuleFunc(fnValue)
	if err != nil {
		return nil, fmt.Errorf("lint: %s: %w", path, err)
	}
	rules := make([]Rule, 0, len(raw))
	for idx, decl := range raw {
		rule, err := patternRuleFromMap(decl, path)
		if err != nil {
			return nil, fmt.Errorf("lint: %s rule[%d]: %w", path, idx, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func invokeRuleFunc(value reflect.Value) ([]map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", ruleFuncName)
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", ruleFuncName)
	}
	results := value.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return []map[string]any[, error]", ruleFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", ruleFuncName)
	}
	decls, ok := results[0].Interface().([]map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must return []map[string]any", ruleFuncName)
	}
	return decls, nil
}

func patternRuleFromMap(decl map[string]any, source string) (PatternRule, error) {
	id, _ := decl["id"].(string)
	id = strings.TrimSpace(id)
	if id == "" {
		return PatternRule{}, fmt.Errorf("id is required")
	}
	patternText, _ := decl["pattern"].(string)
	if strings.TrimSpace(patternText) == "" {
		return PatternRule{}, fmt.Errorf("pattern is required for %s", id)
	}
	pattern, err := regexp.Compile(patternText)
	if err != nil {
		return PatternRule{}, fmt.Errorf("compile pattern for %s: %w", id, err)
	}
	message, _ := decl["message"].(string)
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("line matches %s", patternText)
	}
	level := SeverityWarning
	if raw, ok := decl["severity"].(string); ok {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "error":
			level = SeverityError
		case "warning", "":
			level = SeverityWarning
		default:
			return PatternRule{}, fmt.Errorf("unknown severity %q for %s", raw, id)
		}
	}
	inFences, _ := decl["in_fences"].(bool)
	return PatternRule{
		RuleID:   id,
		Pattern:  pattern,
		Message:  strings.TrimSpace(message),
		Level:    level,
		Source:   source,
		InFences: inFences,
	}, nil
}
