package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/internal/cli"
	"github.com/dmitrymomot/inputguard/pkg/scan"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	var out, errb bytes.Buffer
	code := cli.Execute(context.Background(), args, &out, &errb)
	return result{code: code, stdout: out.String(), stderr: errb.String()}
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	r := run(t, "canonicalize", "%3Cb%3E", "plain")
	require.Equal(t, cli.ExitOK, r.code, r.stderr)

	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "<b>", first["value"])
	assert.Equal(t, "single", first["pattern"])
	assert.Equal(t, []any{"percent"}, first["codecs"])
	assert.Equal(t, "none", second["pattern"])
	assert.Equal(t, []any{}, second["codecs"])
}

func TestCanonicalize_Intrusions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"double percent", []string{"canonicalize", "%253Cscript%253E"}, cli.ExitIntrusion},
		{"double percent allowed", []string{"canonicalize", "--allow-multiple", "%253Cscript%253E"}, cli.ExitOK},
		{"mixed", []string{"canonicalize", "%26lt%3Bscript%26gt%3B"}, cli.ExitIntrusion},
		{"mixed even when multiple allowed", []string{"canonicalize", "--allow-multiple", "%26lt%3Bscript%26gt%3B"}, cli.ExitIntrusion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := run(t, tt.args...)
			assert.Equal(t, tt.code, r.code, r.stderr)
		})
	}
}

func TestValidate_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
	}{
		{"choice ok", []string{"--rule", "Color", "green"}, cli.ExitOK, "green\n"},
		{"choice rejected", []string{"--rule", "Color", "purple"}, cli.ExitFailure, ""},
		{"pattern ok", []string{"--rule", "Username", "jane_doe"}, cli.ExitOK, "jane_doe\n"},
		{"pattern rejected", []string{"--rule", "Username", "Jane Doe"}, cli.ExitFailure, ""},
		{"number as canonical text", []string{"--rule", "Quantity", "7"}, cli.ExitOK, "7\n"},
		{"unknown rule", []string{"--rule", "Missing", "x"}, cli.ExitFailure, ""},
		{"encoded attack", []string{"--rule", "Username", "%2527"}, cli.ExitIntrusion, ""},
		{"blank with allow-null", []string{"--rule", "Username", "--allow-null", "  "}, cli.ExitOK, "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"validate", "--rules", "testdata/rules.yaml"}, tt.args...)
			r := run(t, args...)
			assert.Equal(t, tt.code, r.code, r.stderr)
			assert.Equal(t, tt.stdout, r.stdout)
		})
	}
}

func TestValidate_Kinds(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "avatars"), 0o755))

	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
	}{
		{"credit card", []string{"--kind", "credit_card", "4111 1111 1111 1111"}, cli.ExitOK, "4111111111111111\n"},
		{"credit card luhn", []string{"--kind", "credit_card", "4111 1111 1111 1112"}, cli.ExitFailure, ""},
		{"date", []string{"--kind", "date", "2024-02-29"}, cli.ExitOK, "2024-02-29\n"},
		{"impossible date", []string{"--kind", "date", "2023-02-29"}, cli.ExitFailure, ""},
		{"number bounds", []string{"--kind", "number", "--min", "0", "--max", "100", "100.0001"}, cli.ExitFailure, ""},
		{"uri", []string{"--kind", "uri", "https://example.com/a?b=c"}, cli.ExitOK, "https://example.com/a?b=c\n"},
		{"uri scheme", []string{"--kind", "uri", "javascript:alert(1)"}, cli.ExitIntrusion, ""},
		{"directory", []string{"--kind", "directory", "--root", root, "avatars"}, cli.ExitOK, filepath.Join(root, "avatars") + "\n"},
		{"directory escape", []string{"--kind", "directory", "--root", root, "../../etc"}, cli.ExitIntrusion, ""},
		{"filename", []string{"--kind", "filename", "--extensions", "png,jpg", "me.png"}, cli.ExitOK, "me.png\n"},
		{"filename extension", []string{"--kind", "filename", "--extensions", "png", "me.exe"}, cli.ExitFailure, ""},
		{"choice", []string{"--kind", "choice", "--choices", "a,b", "b"}, cli.ExitOK, "b\n"},
		{"unsupported kind", []string{"--kind", "upload", "x"}, cli.ExitFailure, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := run(t, append([]string{"validate"}, tt.args...)...)
			assert.Equal(t, tt.code, r.code, r.stderr)
			assert.Equal(t, tt.stdout, r.stdout)
		})
	}
}

func TestValidate_FlagErrors(t *testing.T) {
	t.Parallel()

	r := run(t, "validate", "x")
	assert.Equal(t, cli.ExitFailure, r.code)
	assert.Contains(t, r.stderr, "--rule or --kind")

	r = run(t, "validate", "--kind", "printable", "--rule", "Color", "x")
	assert.Equal(t, cli.ExitFailure, r.code)
}

func TestRules(t *testing.T) {
	t.Parallel()

	r := run(t, "rules", "--rules", "testdata/rules.yaml")
	require.Equal(t, cli.ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Color")
	assert.Contains(t, r.stdout, "choice")
	assert.Contains(t, r.stdout, "Username")
	assert.Contains(t, r.stdout, "string")

	r = run(t, "rules", "--rules", "testdata/broken.yaml")
	assert.Equal(t, cli.ExitFailure, r.code)
	assert.Contains(t, r.stderr, `"Username"`)

	r = run(t, "rules")
	assert.Equal(t, cli.ExitFailure, r.code)
}

func TestScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	clean := filepath.Join(dir, "notes.txt")
	infected := filepath.Join(dir, "eicar.txt")
	require.NoError(t, os.WriteFile(clean, []byte("meeting notes"), 0o600))
	require.NoError(t, os.WriteFile(infected, []byte(scan.EICAR), 0o600))

	r := run(t, "scan", clean)
	assert.Equal(t, cli.ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "notes.txt: ok")

	r = run(t, "scan", clean, infected)
	assert.Equal(t, cli.ExitFailure, r.code)
	assert.Contains(t, r.stdout, "eicar.txt: rejected")

	r = run(t, "scan", "--max-size", "4", clean)
	assert.Equal(t, cli.ExitFailure, r.code)

	r = run(t, "scan", filepath.Join(dir, "missing.txt"))
	assert.Equal(t, cli.ExitFailure, r.code)
}

func TestStore_Local(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("meeting notes"), 0o600))
	dest := t.TempDir()

	r := run(t, "store", "--local", dest, "--dir", "docs", "--types", "text/*", src)
	require.Equal(t, cli.ExitOK, r.code, r.stderr)
	assert.True(t, strings.HasPrefix(r.stdout, "docs/notes.txt\t13\tsha256:"), r.stdout)

	data, err := os.ReadFile(filepath.Join(dest, "docs", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "meeting notes", string(data))

	r = run(t, "store", "--local", dest, "--dir", "../outside", src)
	assert.Equal(t, cli.ExitIntrusion, r.code)

	r = run(t, "store", src)
	assert.Equal(t, cli.ExitFailure, r.code)
}

func TestUnknownAuditSink(t *testing.T) {
	t.Parallel()

	r := run(t, "--audit", "kafka", "canonicalize", "x")
	assert.Equal(t, cli.ExitFailure, r.code)
	assert.Contains(t, r.stderr, `unknown audit sink "kafka"`)
}
