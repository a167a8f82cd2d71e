package validator_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/audit"
	"github.com/dmitrymomot/inputguard/pkg/canonical"
	"github.com/dmitrymomot/inputguard/pkg/scan"
	"github.com/dmitrymomot/inputguard/pkg/validator"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordIntrusion(ctx context.Context, in audit.Intrusion, opts ...audit.EventOption) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

type failingCodec struct{}

func (failingCodec) Name() string                  { return "failing" }
func (failingCodec) Decode(string) (string, error) { return "", errors.New("decoder crashed") }

func safeStringRules(t *testing.T) *validator.RuleSet {
	t.Helper()
	safe, err := validator.NewStringRule(`[A-Za-z0-9 &<>%.]*`, 0)
	require.NoError(t, err)
	rs, err := validator.NewRuleSet(map[string]validator.Rule{
		"SafeString": safe,
		"Quantity":   validator.NumberRule{Min: 1, Max: 10},
		"Upload":     validator.FileContentRule{MaxSize: 10},
	})
	require.NoError(t, err)
	return rs
}

func TestGetValidInput_Canonicalization(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRuleSet(safeStringRules(t)))
	ctx := context.Background()

	tests := []struct {
		name      string
		input     string
		want      string
		intrusion bool
	}{
		{"plain", "hello world", "hello world", false},
		{"single percent encoding", "a%26b", "a&b", false},
		{"single entity encoding", "a&amp;b", "a&b", false},
		{"double percent encoding", "%2526", "", true},
		{"mixed encoding", "%26lt;", "", true},
		{"malformed percent sequence", "%C0%AE", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := v.GetValidInput(ctx, "Search", tt.input, "SafeString", 100, false, true)
			if tt.intrusion {
				require.Error(t, err)
				assert.True(t, validator.IsIntrusion(err))
				assert.ErrorIs(t, err, canonical.ErrIntrusion)
				assert.False(t, validator.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetValidInput_AllowMultipleEncoding(t *testing.T) {
	t.Parallel()

	v := validator.New(
		validator.WithRuleSet(safeStringRules(t)),
		validator.WithAllowMultipleEncoding(true),
	)
	ctx := context.Background()

	got, err := v.GetValidInput(ctx, "Search", "%2526", "SafeString", 0, false, true)
	require.NoError(t, err)
	assert.Equal(t, "&", got)

	_, err = v.GetValidInput(ctx, "Search", "%26lt;", "SafeString", 0, false, true)
	assert.True(t, validator.IsIntrusion(err), "mixed encoding is rejected regardless")
}

func TestGetValidInput_WithoutCanonicalization(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRuleSet(safeStringRules(t)))
	got, err := v.GetValidInput(context.Background(), "Search", "%2526", "SafeString", 0, false, false)
	require.NoError(t, err)
	assert.Equal(t, "%2526", got)
}

func TestIsValidInput_TriState(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRuleSet(safeStringRules(t)))
	ctx := context.Background()

	ok, err := v.IsValidInput(ctx, "Search", "hello", "SafeString", 0, false, true)
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = v.IsValidInput(ctx, "Search", "hello!", "SafeString", 0, false, true)
	assert.False(t, ok)
	assert.NoError(t, err, "ordinary failures are not errors")

	ok, err = v.IsValidInput(ctx, "Search", "%2526", "SafeString", 0, false, true)
	assert.False(t, ok)
	assert.True(t, validator.IsIntrusion(err))
}

func TestGetValidInput_MaxLength(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRuleSet(safeStringRules(t)))
	_, err := v.GetValidInput(context.Background(), "Search", "abcdef", "SafeString", 5, false, true)
	require.ErrorIs(t, err, validator.ErrValidationFailed)
	assert.Equal(t, []string{"must be at most 5 characters long"}, validator.ExtractValidationErrors(err).Get("Search"))
}

func TestGetValidInput_NonStringRule(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRuleSet(safeStringRules(t)))
	got, err := v.GetValidInput(context.Background(), "Qty", "7", "Quantity", 0, false, true)
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	_, err = v.GetValidInput(context.Background(), "File", "x", "Upload", 0, false, true)
	assert.ErrorIs(t, err, validator.ErrInvalidRule)
}

func TestGetValidInput_UnknownRule(t *testing.T) {
	t.Parallel()

	v := validator.New()
	ok, err := v.IsValidInput(context.Background(), "Search", "hello", "Missing", 0, false, true)
	assert.False(t, ok)
	assert.NoError(t, err)

	_, err = v.GetValidInput(context.Background(), "Search", "hello", "Missing", 0, false, true)
	assert.ErrorIs(t, err, validator.ErrValidationFailed)
	assert.ErrorIs(t, err, validator.ErrUnknownRule)
	assert.False(t, validator.IsIntrusion(err))
}

func TestNullPolicy(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	scanned := false
	v := validator.New(validator.WithScanner(scan.ScannerFunc(func(context.Context, io.Reader) (scan.Result, error) {
		scanned = true
		return scan.Result{}, nil
	})))

	rules := []struct {
		name string
		rule validator.Rule
		in   validator.Input
	}{
		{"date", validator.DateRule{Layout: "YYYY-MM-DD"}, validator.TextInput("")},
		{"number", validator.NumberRule{Min: 0, Max: 1}, validator.TextInput("   ")},
		{"credit card", validator.CreditCardRule{}, validator.TextInput("")},
		{"choice", validator.ChoiceRule{Choices: []string{"a"}}, validator.TextInput("\t")},
		{"printable", validator.PrintableRule{}, validator.TextInput("")},
		{"uri", validator.URIRule{}, validator.TextInput("")},
		{"redirect", validator.RedirectRule{}, validator.TextInput("")},
		{"directory", validator.DirectoryRule{Root: root, MustExist: true}, validator.TextInput("")},
		{"filename", validator.FilenameRule{}, validator.TextInput("")},
		{"safe html", validator.SafeHTMLRule{}, validator.TextInput(" ")},
		{"file content", validator.FileContentRule{MaxSize: 1}, validator.FileInput(nil)},
		{"upload", validator.UploadRule{Content: validator.FileContentRule{MaxSize: 1}}, validator.Input{Text: "dir"}},
		{"http params", validator.HTTPParamsRule{Params: map[string]validator.Presence{"a": validator.Required}}, validator.ParamsInput(nil)},
	}

	for _, tt := range rules {
		out, err := v.Validate(context.Background(), "Field", tt.rule, tt.in, true, true)
		assert.NoError(t, err, tt.name)
		assert.Nil(t, out, tt.name)

		_, err = v.Validate(context.Background(), "Field", tt.rule, tt.in, false, true)
		assert.ErrorIs(t, err, validator.ErrValidationFailed, tt.name)
		assert.ErrorIs(t, err, validator.ErrFieldRequired, tt.name)
		assert.False(t, validator.IsIntrusion(err), tt.name)
	}
	assert.False(t, scanned, "null input never reaches the scanner")

	n, err := v.GetValidNumber(context.Background(), "Amount", "", 0, 10, true)
	require.NoError(t, err)
	assert.Zero(t, n)

	ok, err := v.IsValidDate(context.Background(), "Birthday", "", "YYYY-MM-DD", true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidate_NilRule(t *testing.T) {
	t.Parallel()

	_, err := validator.New().Validate(context.Background(), "Field", nil, validator.TextInput("x"), false, true)
	assert.ErrorIs(t, err, validator.ErrInvalidRule)
}

func TestIntrusion_LoggedAndAudited(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	store := audit.NewMemoryStorage()
	v := validator.New(
		validator.WithRuleSet(safeStringRules(t)),
		validator.WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
		validator.WithAuditLogger(audit.NewLogger(store)),
	)

	_, err := v.GetValidInput(context.Background(), "Search box", "%253Cscript%253E", "SafeString", 0, false, true)
	require.True(t, validator.IsIntrusion(err))

	ie, ok := validator.AsIntrusion(err)
	require.True(t, ok)
	assert.Equal(t, "Search box", ie.Context)
	assert.Equal(t, "SafeString", ie.Rule)
	assert.Equal(t, validator.KindString, ie.Kind)
	assert.Equal(t, canonical.PatternMultipleIdentical, ie.Pattern)
	assert.Equal(t, []string{"percent", "percent"}, ie.Codecs)

	logged := buf.String()
	assert.Contains(t, logged, "intrusion detected")
	assert.Contains(t, logged, `"context":"Search box"`)
	assert.Contains(t, logged, `"pattern":"multiple_identical"`)
	assert.Contains(t, logged, `"component":"validator"`)
	assert.NotContains(t, logged, "script", "raw input never reaches the log")

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Search box", events[0].Context)
	assert.Equal(t, "multiple_identical", events[0].Pattern)
	assert.Equal(t, []string{"percent", "percent"}, events[0].Codecs)
	assert.NotEmpty(t, events[0].InputHash)
}

func TestIntrusion_AuditFailureDoesNotMaskIntrusion(t *testing.T) {
	t.Parallel()

	rec := &MockRecorder{}
	rec.On("RecordIntrusion", mock.Anything, mock.MatchedBy(func(in audit.Intrusion) bool {
		return in.Context == "Folder" && in.Kind == "directory" && in.Reason == "path escapes the configured root"
	})).Return(errors.New("audit down"))

	v := validator.New(validator.WithAuditLogger(rec))
	_, err := v.GetValidDirectoryPath(context.Background(), "Folder", "../../etc", t.TempDir(), false)
	assert.True(t, validator.IsIntrusion(err))
	rec.AssertExpectations(t)
}

func TestOrdinaryFailure_NotAudited(t *testing.T) {
	t.Parallel()

	rec := &MockRecorder{}
	v := validator.New(validator.WithAuditLogger(rec))
	ok, err := v.IsValidNumber(context.Background(), "Amount", "abc", 0, 1, false)
	assert.False(t, ok)
	assert.NoError(t, err)
	rec.AssertNotCalled(t, "RecordIntrusion", mock.Anything, mock.Anything)
}

func TestCodecFailure_FailsClosed(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithCanonicalizer(canonical.New(canonical.WithCodecs(failingCodec{}))))
	ok, err := v.IsValidChoice(context.Background(), "Color", "red", []string{"red"}, false)
	assert.False(t, ok)
	assert.NoError(t, err)

	_, err = v.GetValidChoice(context.Background(), "Color", "red", []string{"red"}, false)
	assert.ErrorIs(t, err, validator.ErrValidationFailed)
	assert.ErrorIs(t, err, validator.ErrUnverifiable)
	assert.ErrorIs(t, err, canonical.ErrCodec)
	assert.False(t, validator.IsIntrusion(err))
}

func TestValidationErrors_FieldAndTranslation(t *testing.T) {
	t.Parallel()

	_, err := validator.New().GetValidChoice(context.Background(), "Color", "purple", []string{"red", "blue"}, false)
	verrs := validator.ExtractValidationErrors(err)
	require.Len(t, verrs, 1)
	assert.Equal(t, "Color", verrs[0].Field)
	assert.Equal(t, "validation.in_list", verrs[0].TranslationKey)
	assert.Equal(t, "Color", verrs[0].TranslationValues["field"])
	assert.Equal(t, "red, blue", verrs[0].TranslationValues["choices"])
	assert.NotContains(t, err.Error(), "purple")
	assert.True(t, verrs.Has("Color"))
	assert.Equal(t, []string{"Color"}, verrs.Fields())
}

func TestIntrusionError_Error(t *testing.T) {
	t.Parallel()

	err := &validator.IntrusionError{
		Context: "Search",
		Pattern: canonical.PatternMultipleMixed,
		Codecs:  []string{"percent", "html"},
		Reason:  "multiple encoding schemes detected",
	}
	assert.Equal(t, `intrusion detected in "Search": multiple_mixed encoding [percent, html]: multiple encoding schemes detected`, err.Error())
	assert.ErrorIs(t, err, validator.ErrIntrusionDetected)
	assert.ErrorIs(t, err, canonical.ErrIntrusion)
	assert.NotErrorIs(t, err, validator.ErrValidationFailed)
}

func TestHTTPParams(t *testing.T) {
	t.Parallel()

	v := validator.New()
	ctx := context.Background()
	spec := map[string]validator.Presence{
		"name": validator.Required,
		"date": validator.Required,
		"age":  validator.Optional,
	}

	tests := []struct {
		name   string
		params map[string][]string
		valid  bool
	}{
		{"all present", map[string][]string{"name": {"Ann"}, "date": {"2020-01-01"}, "age": {"30"}}, true},
		{"optional missing", map[string][]string{"name": {"Ann"}, "date": {"2020-01-01"}}, true},
		{"required missing", map[string][]string{"name": {"Ann"}, "age": {"30"}}, false},
		{"unexpected key", map[string][]string{"name": {"Ann"}, "date": {"x"}, "age": {"30"}, "extra": {"1"}}, false},
		{"empty value", map[string][]string{"name": {""}, "date": {"x"}}, false},
		{"no values", map[string][]string{"name": {}, "date": {"x"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := v.IsValidHTTPParams(ctx, "Signup", tt.params, spec, false)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestHTTPParams_AggregatesAndCanonicalizes(t *testing.T) {
	t.Parallel()

	v := validator.New()
	ctx := context.Background()
	spec := map[string]validator.Presence{"name": validator.Required, "date": validator.Required}

	_, err := v.GetValidHTTPParams(ctx, "Signup", map[string][]string{"age": {"1"}, "extra": {"2"}}, spec, false)
	verrs := validator.ExtractValidationErrors(err)
	require.Len(t, verrs, 3)
	assert.Equal(t, `parameter "date" is required`, verrs[0].Message)
	assert.Equal(t, `parameter "name" is required`, verrs[1].Message)
	assert.Equal(t, "2 unexpected parameters", verrs[2].Message)

	got, err := v.GetValidHTTPParams(ctx, "Signup", map[string][]string{"na%6De": {"A%20B"}, "date": {"x"}}, spec, false)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"name": {"A B"}, "date": {"x"}}, got)

	_, err = v.GetValidHTTPParams(ctx, "Signup", map[string][]string{"name": {"%2527"}, "date": {"x"}}, spec, false)
	assert.True(t, validator.IsIntrusion(err))
}

func TestRuleSet(t *testing.T) {
	t.Parallel()

	rs, err := validator.NewRuleSet(map[string]validator.Rule{
		"b": validator.CreditCardRule{},
		"a": validator.ChoiceRule{Choices: []string{"x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, []string{"a", "b"}, rs.Names())

	r, ok := rs.Get("b")
	require.True(t, ok)
	assert.Equal(t, validator.KindCreditCard, r.Kind())

	_, err = validator.NewRuleSet(map[string]validator.Rule{"bad": validator.NumberRule{Min: 5, Max: 1}})
	assert.ErrorIs(t, err, validator.ErrInvalidRule)
	assert.Contains(t, err.Error(), `rule "bad"`)

	_, err = validator.NewRuleSet(map[string]validator.Rule{"nil": nil})
	assert.ErrorIs(t, err, validator.ErrInvalidRule)

	_, err = validator.NewRuleSet(map[string]validator.Rule{"": validator.CreditCardRule{}})
	assert.ErrorIs(t, err, validator.ErrInvalidRule)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := validator.NewRegistry(nil)
	assert.Equal(t, 0, reg.Load().Len())

	first, err := validator.NewRuleSet(map[string]validator.Rule{"r": validator.CreditCardRule{}})
	require.NoError(t, err)
	second, err := validator.NewRuleSet(map[string]validator.Rule{"s": validator.CreditCardRule{}})
	require.NoError(t, err)

	reg.Swap(first)
	snapshot := reg.Load()
	old := reg.Swap(second)

	assert.Same(t, first, old)
	_, ok := snapshot.Get("r")
	assert.True(t, ok, "a snapshot is unaffected by a later swap")
	_, ok = reg.Load().Get("r")
	assert.False(t, ok)
}

func TestReload_ConcurrentValidation(t *testing.T) {
	t.Parallel()

	setA, err := validator.NewRuleSet(map[string]validator.Rule{
		"Color": validator.ChoiceRule{Choices: []string{"a"}},
		"OnlyA": validator.ChoiceRule{Choices: []string{"a"}},
	})
	require.NoError(t, err)
	setB, err := validator.NewRuleSet(map[string]validator.Rule{
		"Color": validator.ChoiceRule{Choices: []string{"b"}},
		"OnlyB": validator.ChoiceRule{Choices: []string{"b"}},
	})
	require.NoError(t, err)

	v := validator.New(validator.WithRuleSet(setA))
	ctx := context.Background()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				v.Reload(setB)
			} else {
				v.Reload(setA)
			}
		}
		close(stop)
	}()

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, err := v.IsValidInput(ctx, "Color", "a", "Color", 0, false, true)
				assert.NoError(t, err)
				rs := v.RuleSet()
				rule, found := rs.Get("Color")
				assert.True(t, found)
				assert.Equal(t, validator.KindChoice, rule.Kind())
				_, hasA := rs.Get("OnlyA")
				_, hasB := rs.Get("OnlyB")
				assert.True(t, hasA != hasB, "a snapshot is always one complete set")
			}
		}()
	}

	wg.Wait()
	assert.Same(t, setA, v.RuleSet())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	cfg := validator.Config{
		Codecs:           []string{"percent"},
		MaxEncodingDepth: 3,
		URISchemes:       []string{"https"},
		RedirectAllow:    []string{"https://example.com"},
	}
	v, err := validator.NewFromConfig(cfg)
	require.NoError(t, err)

	ok, err := v.IsValidURI(context.Background(), "Link", "http://example.com", 0, false)
	assert.False(t, ok)
	assert.True(t, validator.IsIntrusion(err), "http is not configured")

	ok, err = v.IsValidRedirect(context.Background(), "Next", "https://example.com/home", 0, false)
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := v.Canonicalize("a&amp;b")
	require.NoError(t, err)
	assert.Equal(t, "a&amp;b", res.Value, "html codec not configured")

	_, err = validator.NewFromConfig(validator.Config{Codecs: []string{"rot13"}})
	assert.Error(t, err)

	_, err = validator.NewFromConfig(validator.Config{Codecs: []string{"html"}, RedirectAllow: []string{"no-scheme"}})
	assert.ErrorIs(t, err, validator.ErrInvalidRule)
}

func TestKind(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"date", "number", "credit_card", "choice", "printable", "string", "uri",
		"redirect", "directory", "filename", "safe_html", "file_content", "upload", "http_params"} {
		k, err := validator.ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}

	_, err := validator.ParseKind("nope")
	assert.ErrorIs(t, err, validator.ErrInvalidRule)
}
