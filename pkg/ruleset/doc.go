// Package ruleset builds validator rule sets from YAML definitions.
//
// A definition file maps rule names to a kind and the constraints for that
// kind:
//
//	rules:
//	  Project.Safe.String:
//	    kind: string
//	    pattern: '[A-Za-z0-9 .,_-]*'
//	    max_length: 256
//	  Birthday:
//	    kind: date
//	    layout: YYYY-MM-DD
//
// Parse and LoadFile return an immutable *validator.RuleSet. A Loader keeps
// compiled patterns in an LRU so repeated reloads of the same file do not
// recompile them. A Reloader re-reads a file and swaps the validator's rule
// set in one step; a file that fails to load leaves the previous set active.
//
// Every error names the rule it concerns.
package ruleset
