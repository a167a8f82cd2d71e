package htmlsafe_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/htmlsafe"
)

func TestSanitizer_Sanitize(t *testing.T) {
	t.Parallel()

	s := htmlsafe.New()

	tests := []struct {
		name   string
		input  string
		policy htmlsafe.Policy
		want   string
	}{
		{
			name:   "document wrapper stripped",
			input:  "<head><body>test</body></html>",
			policy: htmlsafe.DefaultPolicy(),
			want:   "test",
		},
		{
			name:   "script removed with content",
			input:  "<b>hi</b><script>alert(1)</script>",
			policy: htmlsafe.DefaultPolicy(),
			want:   "<b>hi</b>",
		},
		{
			name:   "event handler removed",
			input:  `<p onclick="steal()">x</p>`,
			policy: htmlsafe.Policy{AllowedTags: []string{"p"}, AllowedAttrs: []string{"onclick"}},
			want:   "<p>x</p>",
		},
		{
			name:   "style element never allowed",
			input:  "<style>body{}</style>ok",
			policy: htmlsafe.Policy{AllowedTags: []string{"style"}},
			want:   "ok",
		},
		{
			name:   "plain text unchanged",
			input:  "just text",
			policy: htmlsafe.DefaultPolicy(),
			want:   "just text",
		},
		{
			name:   "empty policy strips all tags",
			input:  "<i>a</i><u>b</u>",
			policy: htmlsafe.Policy{},
			want:   "ab",
		},
		{
			name:   "case-insensitive tag names",
			input:  "<em>x</em>",
			policy: htmlsafe.Policy{AllowedTags: []string{" EM "}},
			want:   "<em>x</em>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := s.Sanitize(tt.input, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizer_JavaScriptURLRemoved(t *testing.T) {
	t.Parallel()

	s := htmlsafe.New()
	got, err := s.Sanitize(`<a href="javascript:alert(1)">x</a>`, htmlsafe.DefaultPolicy())
	require.NoError(t, err)
	assert.NotContains(t, got, "javascript")
	assert.Contains(t, got, "x")
}

func TestSanitizer_RejectUnsafe(t *testing.T) {
	t.Parallel()

	s := htmlsafe.New()
	p := htmlsafe.DefaultPolicy()
	p.RejectUnsafe = true

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"allowed markup", "<p><b>bold</b></p>", true},
		{"script", "<script>x</script>", false},
		{"handler", `<b onmouseover="x">y</b>`, false},
		{"unknown element", "<blink>y</blink>", false},
		{"javascript url", `<a href="javascript:x">y</a>`, false},
		{"relative url", `<a href="/docs">y</a>`, true},
		{"comment", "<!-- x -->", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := s.Sanitize(tt.input, p)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, htmlsafe.ErrUnsafeHTML)
			}
		})
	}
}

func TestSanitizer_Concurrent(t *testing.T) {
	t.Parallel()

	s := htmlsafe.New(htmlsafe.WithCacheSize(2))
	policies := []htmlsafe.Policy{
		htmlsafe.DefaultPolicy(),
		{AllowedTags: []string{"b"}},
		{AllowedTags: []string{"i"}},
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Sanitize("<b>x</b><i>y</i>", policies[i%len(policies)])
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
