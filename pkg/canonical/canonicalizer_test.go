package canonical_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/canonical"
	"github.com/dmitrymomot/inputguard/pkg/codec"
)

type failingCodec struct{}

func (failingCodec) Name() string { return "failing" }

func (failingCodec) Decode(string) (string, error) { return "", errors.New("boom") }

func TestCanonicalize_AlreadyCanonical(t *testing.T) {
	t.Parallel()

	c := canonical.New()
	inputs := []string{"", "hello world", "joe@example.com", "100% sure", "fish & chips", "ünïcödé"}

	for _, in := range inputs {
		res, err := c.Canonicalize(in, false)
		require.NoError(t, err, in)
		assert.Equal(t, in, res.Value)
		assert.Equal(t, canonical.PatternNone, res.Pattern)
		assert.Empty(t, res.Codecs)

		again, err := c.Canonicalize(res.Value, false)
		require.NoError(t, err)
		assert.Equal(t, res.Value, again.Value)
		assert.Equal(t, canonical.PatternNone, again.Pattern)
	}
}

func TestCanonicalize_SingleEncoding(t *testing.T) {
	t.Parallel()

	c := canonical.New()
	originals := []string{"<script>alert(1)</script>", "a&b=c d", "100% sure", "path/to file", "ünïcödé", `"quoted" > 'single'`}

	t.Run("percent", func(t *testing.T) {
		t.Parallel()
		for _, in := range originals {
			res, err := c.Canonicalize(codec.Percent{}.Encode(in), false)
			require.NoError(t, err, in)
			assert.Equal(t, in, res.Value)
			assert.Equal(t, canonical.PatternSingle, res.Pattern, in)
			assert.Equal(t, []string{codec.NamePercent}, res.Codecs)
		}
	})

	t.Run("html entities", func(t *testing.T) {
		t.Parallel()
		for _, in := range []string{"<script>alert(1)</script>", "a & b", "5 > 3", `"quoted"`} {
			res, err := c.Canonicalize(codec.HTMLEntity{}.Encode(in), false)
			require.NoError(t, err, in)
			assert.Equal(t, in, res.Value)
			assert.Equal(t, canonical.PatternSingle, res.Pattern, in)
			assert.Equal(t, []string{codec.NameHTMLEntity}, res.Codecs)
		}
	})
}

func TestCanonicalize_DoubleEncoding(t *testing.T) {
	t.Parallel()

	c := canonical.New()

	t.Run("rejected when multiple encoding is not allowed", func(t *testing.T) {
		t.Parallel()
		res, err := c.Canonicalize("%2526", false)
		require.Error(t, err)
		assert.ErrorIs(t, err, canonical.ErrIntrusion)
		assert.Equal(t, canonical.PatternMultipleIdentical, res.Pattern)

		var encErr *canonical.EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, []string{codec.NamePercent, codec.NamePercent}, encErr.Codecs)
	})

	t.Run("accepted when multiple encoding is allowed", func(t *testing.T) {
		t.Parallel()
		res, err := c.Canonicalize("%2526", true)
		require.NoError(t, err)
		assert.Equal(t, "&", res.Value)
		assert.Equal(t, canonical.PatternMultipleIdentical, res.Pattern)
	})

	t.Run("double html encoding", func(t *testing.T) {
		t.Parallel()
		res, err := c.Canonicalize("&amp;lt;script&amp;gt;", false)
		assert.ErrorIs(t, err, canonical.ErrIntrusion)
		assert.Equal(t, canonical.PatternMultipleIdentical, res.Pattern)
		assert.Equal(t, "<script>", res.Value)
	})
}

func TestCanonicalize_MixedEncoding(t *testing.T) {
	t.Parallel()

	c := canonical.New()
	inputs := []string{
		"%26lt;script%26gt;",
		"&#x25;3Cscript&#x25;3E",
		"&lt;script%20src=x&gt;",
	}

	for _, in := range inputs {
		for _, allow := range []bool{false, true} {
			res, err := c.Canonicalize(in, allow)
			require.Error(t, err, in)
			assert.ErrorIs(t, err, canonical.ErrIntrusion)
			assert.Equal(t, canonical.PatternMultipleMixed, res.Pattern, in)
		}
	}
}

func TestCanonicalize_Malformed(t *testing.T) {
	t.Parallel()

	c := canonical.New()
	inputs := []string{"%C0%AE%C0%AE/etc/passwd", "&#0;", "name%00.jpg", "bad\xffutf8"}

	for _, in := range inputs {
		res, err := c.Canonicalize(in, true)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, canonical.ErrIntrusion)
		assert.Equal(t, canonical.PatternMalformed, res.Pattern)
		assert.Equal(t, in, res.Value, "malformed input must be returned unchanged")
	}
}

func TestCanonicalize_PassBound(t *testing.T) {
	t.Parallel()

	c := canonical.New(canonical.WithMaxDepth(3))

	res, err := c.Canonicalize("%2541", true)
	require.NoError(t, err)
	assert.Equal(t, "A", res.Value)

	res, err = c.Canonicalize("%25252541", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, canonical.ErrIntrusion)
	assert.Equal(t, canonical.PatternMalformed, res.Pattern)
	assert.Equal(t, "%25252541", res.Value)
}

func TestCanonicalize_PassBoundExact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		depth    int
		input    string
		want     string
		pattern  canonical.Pattern
		overflow string
	}{
		{"one layer at depth 1", 1, "%26", "&", canonical.PatternSingle, "%2526"},
		{"two layers at depth 2", 2, "%2526", "&", canonical.PatternMultipleIdentical, "%252526"},
		{"three layers at depth 3", 3, "%252541", "A", canonical.PatternMultipleIdentical, "%25252541"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := canonical.New(canonical.WithCodecs(codec.Percent{}), canonical.WithMaxDepth(tt.depth))

			res, err := c.Canonicalize(tt.input, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, tt.pattern, res.Pattern)

			res, err = c.Canonicalize(tt.overflow, true)
			require.Error(t, err)
			assert.ErrorIs(t, err, canonical.ErrIntrusion)
			assert.Equal(t, canonical.PatternMalformed, res.Pattern)
		})
	}
}

func TestCanonicalize_FixedPoint(t *testing.T) {
	t.Parallel()

	codecs := []codec.Codec{codec.HTMLEntity{}, codec.Percent{}, codec.JavaScript{}, codec.CSS{}}
	c := canonical.New(canonical.WithCodecs(codecs...))
	inputs := []string{"%253Cb%253E", `\x3cb\x3e`, "a%20b", "&amp;amp;", "plain"}

	for _, in := range inputs {
		res, _ := c.Canonicalize(in, true)
		if res.Pattern == canonical.PatternMalformed {
			continue
		}
		for _, cd := range codecs {
			out, err := cd.Decode(res.Value)
			require.NoError(t, err)
			assert.Equal(t, res.Value, out, "%s must not change canonical form of %q", cd.Name(), in)
		}
	}
}

func TestCanonicalize_CodecFailureIsNotIntrusion(t *testing.T) {
	t.Parallel()

	c := canonical.New(canonical.WithCodecs(failingCodec{}))
	res, err := c.Canonicalize("anything", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, canonical.ErrCodec)
	assert.NotErrorIs(t, err, canonical.ErrIntrusion)
	assert.Equal(t, "anything", res.Value)
}

func TestCanonicalize_Concurrent(t *testing.T) {
	t.Parallel()

	c := canonical.New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Canonicalize("a%20b", false)
			assert.NoError(t, err)
			assert.Equal(t, "a b", res.Value)
		}()
	}
	wg.Wait()
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{codec.NameHTMLEntity, codec.NamePercent}, canonical.New().Codecs())
	assert.Equal(t, []string{codec.NameCSS}, canonical.New(canonical.WithCodecs(nil, codec.CSS{})).Codecs())
	assert.Equal(t, []string{codec.NameHTMLEntity, codec.NamePercent}, canonical.New(canonical.WithCodecs()).Codecs())
}

func TestPattern_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", canonical.PatternNone.String())
	assert.Equal(t, "single", canonical.PatternSingle.String())
	assert.Equal(t, "multiple_identical", canonical.PatternMultipleIdentical.String())
	assert.Equal(t, "multiple_mixed", canonical.PatternMultipleMixed.String())
	assert.Equal(t, "malformed", canonical.PatternMalformed.String())
	assert.Equal(t, "unknown", canonical.Pattern(42).String())
}

func TestEncodingError_Error(t *testing.T) {
	t.Parallel()

	err := &canonical.EncodingError{
		Pattern: canonical.PatternMultipleMixed,
		Codecs:  []string{"percent", "html"},
		Reason:  "multiple encoding schemes detected",
	}
	assert.Equal(t, "encoding-based intrusion detected: multiple_mixed encoding [percent, html]: multiple encoding schemes detected", err.Error())
	assert.ErrorIs(t, err, canonical.ErrIntrusion)
}
