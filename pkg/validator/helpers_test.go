package validator_test

import (
	"regexp"
	"strings"

	"github.com/dmitrymomot/inputguard/pkg/htmlsafe"
)

func regexpMust(p string) *regexp.Regexp { return regexp.MustCompile(p) }

func longName(n int) string { return strings.Repeat("a", n-4) + ".txt" }

func htmlPolicy() htmlsafe.Policy { return htmlsafe.DefaultPolicy() }
