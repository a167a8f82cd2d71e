package validator

import "fmt"

// Kind identifies a rule variant.
type Kind uint8

const (
	KindDate Kind = iota + 1
	KindNumber
	KindCreditCard
	KindChoice
	KindPrintable
	KindString
	KindURI
	KindRedirect
	KindDirectory
	KindFilename
	KindSafeHTML
	KindFileContent
	KindUpload
	KindHTTPParams
)

var kindNames = map[Kind]string{
	KindDate:        "date",
	KindNumber:      "number",
	KindCreditCard:  "credit_card",
	KindChoice:      "choice",
	KindPrintable:   "printable",
	KindString:      "string",
	KindURI:         "uri",
	KindRedirect:    "redirect",
	KindDirectory:   "directory",
	KindFilename:    "filename",
	KindSafeHTML:    "safe_html",
	KindFileContent: "file_content",
	KindUpload:      "upload",
	KindHTTPParams:  "http_params",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind resolves a kind by its String form.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, s)
}

// textual reports whether the kind reads Input.Text.
func (k Kind) textual() bool {
	switch k {
	case KindHTTPParams, KindFileContent, KindUpload:
		return false
	}
	return true
}
