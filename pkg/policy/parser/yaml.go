package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"veritas-hq/meridian/pkg/policy/ast"
)

// yamlPolicy is the YAML document structure for a policy file.
type yamlPolicy struct {
	Name              string      `yaml:"name"`
	Version           uint64      `yaml:"version"`
	Description       string      `yaml:"description"`
	Mode              string      `yaml:"mode"`
	ParanoidThreshold int         `yaml:"paranoid_threshold"`
	Rules             []*yamlRule `yaml:"rules"`
}

// yamlRule is the YAML structure for a single rule.
type yamlRule struct {
	ID            string         `yaml:"id"`
	Priority      int            `yaml:"priority"`
	Action        string         `yaml:"action"`
	Terminal      bool           `yaml:"terminal"`
	Justification string         `yaml:"justification"`
	Condition     *yamlCondition `yaml:"condition"`
}

// yamlCondition is the YAML structure for a condition node. Exactly one
// of the keys must be set.
type yamlCondition struct {
	Compare *yamlCompare     `yaml:"compare"`
	Member  *yamlMember      `yaml:"member"`
	All     []*yamlCondition `yaml:"all"`
	Any     []*yamlCondition `yaml:"any"`
	Not     *yamlCondition   `yaml:"not"`
}

type yamlCompare struct {
	Field string      `yaml:"field"`
	Op    string      `yaml:"op"`
	Value interface{} `yaml:"value"`
}

type yamlMember struct {
	Field  string   `yaml:"field"`
	Op     string   `yaml:"op"`
	Values []string `yaml:"values"`
}

// Parse parses a policy document from YAML bytes and validates it.
func Parse(data []byte) (*ast.Policy, error) {
	var doc yamlPolicy
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy YAML: %w", err)
	}

	policy := &ast.Policy{
		Name:              doc.Name,
		Version:           doc.Version,
		Description:       doc.Description,
		Mode:              ast.Mode(doc.Mode),
		ParanoidThreshold: doc.ParanoidThreshold,
	}

	for i, rule := range doc.Rules {
		built, err := buildRule(rule)
		if err != nil {
			return nil, fmt.Errorf("policy %s: rule %d: %w", doc.Name, i, err)
		}
		policy.Rules = append(policy.Rules, built)
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return policy, nil
}

// ParseFile parses a policy document from a YAML file.
func ParseFile(path string) (*ast.Policy, error) {
	data, err := os.ReadFile(path) // #nosec G304 - policy path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", path, err)
	}
	return Parse(data)
}

// buildRule converts a YAML rule into an AST rule.
func buildRule(rule *yamlRule) (*ast.Rule, error) {
	built := &ast.Rule{
		ID:            rule.ID,
		Priority:      rule.Priority,
		Action:        ast.Action(rule.Action),
		Terminal:      rule.Terminal,
		Justification: rule.Justification,
	}

	if rule.Condition != nil {
		condition, err := buildCondition(rule.Condition)
		if err != nil {
			return nil, err
		}
		built.Condition = condition
	}

	return built, nil
}

// buildCondition converts a YAML condition node into an AST condition.
func buildCondition(node *yamlCondition) (*ast.Condition, error) {
	set := 0
	if node.Compare != nil {
		set++
	}
	if node.Member != nil {
		set++
	}
	if len(node.All) > 0 {
		set++
	}
	if len(node.Any) > 0 {
		set++
	}
	if node.Not != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("condition node must have exactly one of compare/member/all/any/not, got %d", set)
	}

	switch {
	case node.Compare != nil:
		value, err := buildValue(node.Compare.Value)
		if err != nil {
			return nil, fmt.Errorf("compare on %q: %w", node.Compare.Field, err)
		}
		return &ast.Condition{
			Type:     ast.ConditionTypeCompare,
			Field:    node.Compare.Field,
			Operator: ast.Operator(node.Compare.Op),
			Value:    value,
		}, nil

	case node.Member != nil:
		return &ast.Condition{
			Type:     ast.ConditionTypeMember,
			Field:    node.Member.Field,
			Operator: ast.Operator(node.Member.Op),
			Values:   node.Member.Values,
		}, nil

	case len(node.All) > 0:
		children, err := buildChildren(node.All)
		if err != nil {
			return nil, err
		}
		return &ast.Condition{Type: ast.ConditionTypeAll, Children: children}, nil

	case len(node.Any) > 0:
		children, err := buildChildren(node.Any)
		if err != nil {
			return nil, err
		}
		return &ast.Condition{Type: ast.ConditionTypeAny, Children: children}, nil

	default:
		child, err := buildCondition(node.Not)
		if err != nil {
			return nil, err
		}
		return &ast.Condition{Type: ast.ConditionTypeNot, Children: []*ast.Condition{child}}, nil
	}
}

// buildChildren converts a list of YAML condition nodes.
func buildChildren(nodes []*yamlCondition) ([]*ast.Condition, error) {
	children := make([]*ast.Condition, 0, len(nodes))
	for _, node := range nodes {
		child, err := buildCondition(node)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// buildValue converts a YAML scalar into an AST literal value.
func buildValue(raw interface{}) (ast.Value, error) {
	switch v := raw.(type) {
	case string:
		return ast.StringValue(v), nil
	case int:
		return ast.NumberValue(float64(v)), nil
	case int64:
		return ast.NumberValue(float64(v)), nil
	case float64:
		return ast.NumberValue(v), nil
	case nil:
		return ast.Value{}, fmt.Errorf("value cannot be empty")
	default:
		return ast.Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
