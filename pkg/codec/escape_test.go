package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/codec"
)

func TestJavaScript_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no escapes", "alert(1)", "alert(1)"},
		{"hex escape", `\x3cscript\x3e`, "<script>"},
		{"unicode escape", `\u003C`, "<"},
		{"braced unicode escape", `\u{1F600}`, "😀"},
		{"surrogate pair", `\uD83D\uDE00`, "😀"},
		{"other escapes untouched", `line\nbreak`, `line\nbreak`},
		{"escaped backslash kept", `\\x41`, `\\x41`},
		{"trailing backslash", `abc\`, `abc\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := codec.JavaScript{}.Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestJavaScript_DecodeMalformed(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`\x4`,
		`\xZZ`,
		`\u12`,
		`\uD800`,
		`\uDC00abc`,
		`\u{110000}`,
		`\u{}`,
		`\x00`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			_, err := codec.JavaScript{}.Decode(in)
			assert.ErrorIs(t, err, codec.ErrMalformed)
		})
	}
}

func TestJavaScript_EncodeRoundTrip(t *testing.T) {
	t.Parallel()

	in := `<img src=x onerror="alert('😀')">`
	out, err := codec.JavaScript{}.Decode(codec.JavaScript{}.Encode(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCSS_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no escapes", "color: red", "color: red"},
		{"hex escape with space terminator", `\3C script`, "<script"},
		{"six digit escape", `\00003Cb`, "<b"},
		{"crlf terminator", "\\41\r\nB", "AB"},
		{"non hex escape kept", `\"quoted\"`, `\"quoted\"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := codec.CSS{}.Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}

	t.Run("malformed code points", func(t *testing.T) {
		t.Parallel()
		for _, in := range []string{`\0`, `\D800`, `\110000`} {
			_, err := codec.CSS{}.Decode(in)
			assert.ErrorIs(t, err, codec.ErrMalformed, in)
		}
	})

	t.Run("encode round trip", func(t *testing.T) {
		t.Parallel()
		in := "expression(alert(1))"
		out, err := codec.CSS{}.Decode(codec.CSS{}.Encode(in))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestUnicode_Decode(t *testing.T) {
	t.Parallel()

	out, err := codec.Unicode{}.Decode("＜script＞")
	require.NoError(t, err)
	assert.Equal(t, "<script>", out)

	out, err = codec.Unicode{}.Decode("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	_, err = codec.Unicode{}.Decode("bad\xffbyte")
	assert.ErrorIs(t, err, codec.ErrMalformed)
}
