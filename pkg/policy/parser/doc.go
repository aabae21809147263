// Package parser loads Meridian policy documents from YAML into the AST
// defined by pkg/policy/ast. The parser is strict: unknown condition node
// kinds, missing actions, and non-increasing versions are reported as
// errors at load time, never at evaluation time.
package parser
