// Package lang implements jslight, a small assignment-only expression
// language.
//
// A program is a sequence of variable assignments:
//
//	// comments run to the end of the line
//	var a = 1 + 2 * 3;
//	var b = "x" + "y";
//	var c = [1, 2, a];
//	var d = {name: b, "max": max(a, 10), nested: load_json("data.json")};
//
// # Grammar
//
// Precedence, from lowest to highest:
//
//	Program   → Statement*
//	Statement → "var" Ident "=" Sum ";"
//	Sum       → Factor (("+" | "-") Factor)*
//	Factor    → Power (("*" | "/" | "%") Power)*
//	Power     → Unary ("^" Unary)*
//	Unary     → ("+" | "-") Unary | Primary
//	Primary   → Call | Literal | Ident | "(" Sum ")"
//	Call      → Ident "(" (Sum ("," Sum)*)? ")"
//	Literal   → Object | Array | String | "-"? Number | "true" | "false" | "null"
//	Object    → "{" ((Ident | String) ":" Sum ("," ...)*)? "}"
//	Array     → "[" (Sum ("," Sum)*)? "]"
//
// Every binary operator is left-associative, including "^": 2^3^2 is 64.
// [Grammar] returns the EBNF derived from the parser itself.
//
// # Evaluation
//
// A [Runner] evaluates a [Prg] statement by statement. Values are
// dynamically typed (see [Value]). Arithmetic is defined on pairs of
// numbers, "+" also concatenates pairs of strings, and any other pairing
// fails with [ErrTypeMismatch]; there is no implicit conversion. Calls
// dispatch to a fixed [Builtins] registry checked for arity.
//
// Every error returned by the evaluator matches one of the sentinel errors
// of this package with [errors.Is] and carries structured attributes for
// [log/slog].
package lang
