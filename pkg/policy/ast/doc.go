// Package ast defines the typed representation of Meridian governance
// policies: rules, condition expressions, terminal actions, and policy
// modes. The types in this package are pure data; evaluation lives in
// pkg/policy/engine and parsing in pkg/policy/parser.
package ast
