// Package validation holds the rule pipeline that decides whether a
// contribution may be submitted for review.
//
// Rules are plain values behind the Validator interface and run in a fixed
// order. Every rule runs on every contribution; a failing rule never hides
// the findings of later ones. Advisory results are reported but do not
// affect eligibility.
package validation
