package engine

import (
	"testing"

	"veritas-hq/meridian/pkg/policy/ast"
)

func testRequest() *DecisionRequest {
	return &DecisionRequest{
		ID:          "req-1",
		Actor:       "agent-7",
		Action:      "write_data",
		Resource:    "customers-db",
		DataClasses: []string{"pii", "financial"},
		RiskLevel:   2,
		Context:     map[string]string{"environment": "production"},
	}
}

func compare(field string, op ast.Operator, value ast.Value) *ast.Condition {
	return &ast.Condition{Type: ast.ConditionTypeCompare, Field: field, Operator: op, Value: value}
}

func member(field string, op ast.Operator, values ...string) *ast.Condition {
	return &ast.Condition{Type: ast.ConditionTypeMember, Field: field, Operator: op, Values: values}
}

func TestMatchesCompare(t *testing.T) {
	tests := []struct {
		name      string
		condition *ast.Condition
		want      bool
	}{
		{"string equal", compare("actor", ast.OperatorEqual, ast.StringValue("agent-7")), true},
		{"string equal miss", compare("actor", ast.OperatorEqual, ast.StringValue("agent-8")), false},
		{"string not equal", compare("action", ast.OperatorNotEqual, ast.StringValue("read_data")), true},
		{"number greater equal", compare("risk_level", ast.OperatorGreaterEqual, ast.NumberValue(2)), true},
		{"number greater", compare("risk_level", ast.OperatorGreaterThan, ast.NumberValue(2)), false},
		{"number less", compare("risk_level", ast.OperatorLessThan, ast.NumberValue(3)), true},
		{"context lookup", compare("context.environment", ast.OperatorEqual, ast.StringValue("production")), true},
		{"context miss", compare("context.region", ast.OperatorEqual, ast.StringValue("eu")), false},

		// Closed world: unknown fields never match.
		{"unknown field", compare("severity", ast.OperatorEqual, ast.StringValue("high")), false},

		// Type mismatches fail the match instead of erroring.
		{"ordered op on string field", compare("actor", ast.OperatorGreaterThan, ast.StringValue("a")), false},
		{"string literal against number field", compare("risk_level", ast.OperatorEqual, ast.StringValue("2")), false},
		{"number literal against string field", compare("actor", ast.OperatorEqual, ast.NumberValue(7)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.condition, testRequest()); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesMember(t *testing.T) {
	tests := []struct {
		name      string
		condition *ast.Condition
		want      bool
	}{
		{"scalar in", member("actor", ast.OperatorIn, "agent-7", "agent-9"), true},
		{"scalar in miss", member("actor", ast.OperatorIn, "agent-9"), false},
		{"scalar not_in", member("actor", ast.OperatorNotIn, "agent-9"), true},
		{"set intersects", member("data_classes", ast.OperatorIn, "phi", "pii"), true},
		{"set disjoint", member("data_classes", ast.OperatorIn, "phi", "biometric"), false},
		{"set not_in disjoint", member("data_classes", ast.OperatorNotIn, "phi"), true},
		{"set not_in intersects", member("data_classes", ast.OperatorNotIn, "pii"), false},
		{"membership on number field", member("risk_level", ast.OperatorIn, "2"), false},
		{"unknown field", member("labels", ast.OperatorIn, "x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.condition, testRequest()); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesCombinators(t *testing.T) {
	matchTrue := compare("actor", ast.OperatorEqual, ast.StringValue("agent-7"))
	matchFalse := compare("actor", ast.OperatorEqual, ast.StringValue("agent-8"))

	tests := []struct {
		name      string
		condition *ast.Condition
		want      bool
	}{
		{
			name:      "all true",
			condition: &ast.Condition{Type: ast.ConditionTypeAll, Children: []*ast.Condition{matchTrue, matchTrue}},
			want:      true,
		},
		{
			name:      "all with one false",
			condition: &ast.Condition{Type: ast.ConditionTypeAll, Children: []*ast.Condition{matchTrue, matchFalse}},
			want:      false,
		},
		{
			name:      "any with one true",
			condition: &ast.Condition{Type: ast.ConditionTypeAny, Children: []*ast.Condition{matchFalse, matchTrue}},
			want:      true,
		},
		{
			name:      "any all false",
			condition: &ast.Condition{Type: ast.ConditionTypeAny, Children: []*ast.Condition{matchFalse, matchFalse}},
			want:      false,
		},
		{
			name:      "not inverts",
			condition: &ast.Condition{Type: ast.ConditionTypeNot, Children: []*ast.Condition{matchFalse}},
			want:      true,
		},
		{
			name: "nested",
			condition: &ast.Condition{Type: ast.ConditionTypeAll, Children: []*ast.Condition{
				matchTrue,
				{Type: ast.ConditionTypeNot, Children: []*ast.Condition{matchFalse}},
			}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.condition, testRequest()); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesNilCondition(t *testing.T) {
	if !Matches(nil, testRequest()) {
		t.Error("nil condition should always match")
	}
}

func TestOrderRules(t *testing.T) {
	rules := []*ast.Rule{
		{ID: "a", Priority: 10},
		{ID: "b", Priority: 50},
		{ID: "c", Priority: 50},
		{ID: "d", Priority: 100},
	}

	ordered := OrderRules(rules)

	wantOrder := []string{"d", "b", "c", "a"}
	for i, want := range wantOrder {
		if ordered[i].ID != want {
			t.Errorf("ordered[%d] = %s, want %s", i, ordered[i].ID, want)
		}
	}

	// The input slice must be untouched.
	if rules[0].ID != "a" || rules[3].ID != "d" {
		t.Error("OrderRules modified the input slice")
	}
}
