package csvxml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
)

// Unlimited disables the record limit.
const Unlimited = -1

// DefaultBufferSize is the read buffer size used when none is
// configured.
const DefaultBufferSize = 4096

// Options configures delimited-text conversion.
type Options struct {
	// Headers treats the first row as a header naming the columns of
	// every following record.
	// Default: false
	Headers bool

	// MaxRecords stops conversion after this many data records. The
	// header row does not count. Reaching the limit is not an error;
	// the remaining input is simply never read.
	// Default: Unlimited
	MaxRecords int

	// Encoding is the IANA name of the input character encoding, for
	// example "ISO-8859-1" or "UTF-16BE".
	// Default: "" (UTF-8)
	Encoding string

	// Separator is the field delimiter.
	// It must be a valid rune and not \r, \n, or the Unicode replacement character (0xFFFD).
	// Default: ','
	Separator rune

	// Escape opens and closes quoted sections, inside which the
	// separator and line terminators are literal text. A doubled
	// escape stands for one literal escape character.
	// Default: '"'
	Escape rune

	// BufferSize is the size in bytes of the underlying read buffer.
	// Default: DefaultBufferSize
	BufferSize int

	// EmptyFields emits fields with empty text and pads every data row
	// to the full header width.
	// Default: false
	EmptyFields bool

	// FieldNames attaches a column attribute carrying the
	// header-derived name to each data field.
	// Default: true
	FieldNames bool

	// Comments, when set to the literal string "#", reports lines
	// whose first character is '#' as comment elements instead of
	// records. No other value is accepted.
	// Default: "" (disabled)
	Comments string
}

// DefaultOptions returns the default conversion configuration.
func DefaultOptions() Options {
	return Options{
		Headers:     false,
		MaxRecords:  Unlimited,
		Encoding:    "",
		Separator:   ',',
		Escape:      '"',
		BufferSize:  DefaultBufferSize,
		EmptyFields: false,
		FieldNames:  true,
		Comments:    "",
	}
}

// validDelim reports whether r can serve as a separator or escape
// character.
func validDelim(r rune) bool {
	return r != 0 && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// Validate checks if the options are valid.
// Returns an error if the options are invalid.
func (o Options) Validate() error {
	if !validDelim(o.Separator) {
		return &OptionsError{Field: "Separator", Message: "invalid separator character"}
	}
	if !validDelim(o.Escape) {
		return &OptionsError{Field: "Escape", Message: "invalid escape character"}
	}
	if o.Separator == o.Escape {
		return &OptionsError{Field: "Escape", Message: "escape character same as separator"}
	}
	if o.MaxRecords < Unlimited {
		return &OptionsError{Field: "MaxRecords", Message: "must be Unlimited or a record count"}
	}
	if o.BufferSize < 0 {
		return &OptionsError{Field: "BufferSize", Message: "must not be negative"}
	}
	if o.Comments != "" && o.Comments != "#" {
		return &OptionsError{Field: "Comments", Message: `only "#" is supported`}
	}
	if o.Encoding != "" {
		enc, err := ianaindex.IANA.Encoding(o.Encoding)
		if err != nil || enc == nil {
			return &OptionsError{Field: "Encoding", Message: fmt.Sprintf("unknown or unsupported charset %q", o.Encoding)}
		}
	}
	return nil
}

// ParseParams builds Options from wire-format parameters as they appear
// in URLs and configuration profiles, starting from the defaults. The
// recognized keys are:
//
//	process-headers, max-records, encoding, separator, escape,
//	buffer-size, empty-fields, field-names, comments
//
// Unknown keys are rejected. The result is validated before return.
func ParseParams(params map[string]string) (Options, error) {
	opts := DefaultOptions()
	for key, value := range params {
		if err := opts.applyParam(key, value); err != nil {
			return Options{}, err
		}
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (o *Options) applyParam(key, value string) error {
	switch key {
	case "process-headers":
		return setBool(&o.Headers, key, value)
	case "max-records":
		return setInt(&o.MaxRecords, key, value)
	case "encoding":
		o.Encoding = value
		return nil
	case "separator":
		return setRune(&o.Separator, key, value)
	case "escape":
		return setRune(&o.Escape, key, value)
	case "buffer-size":
		return setInt(&o.BufferSize, key, value)
	case "empty-fields":
		return setBool(&o.EmptyFields, key, value)
	case "field-names":
		return setBool(&o.FieldNames, key, value)
	case "comments":
		o.Comments = value
		return nil
	}
	return &OptionsError{Field: key, Message: "unknown option"}
}

func setBool(dst *bool, key, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return &OptionsError{Field: key, Message: "not a boolean: " + value}
	}
	*dst = v
	return nil
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return &OptionsError{Field: key, Message: "not an integer: " + value}
	}
	*dst = v
	return nil
}

func setRune(dst *rune, key, value string) error {
	c, size := utf8.DecodeRuneInString(value)
	if value == "" || size != len(value) || (c == utf8.RuneError && size == 1) {
		return &OptionsError{Field: key, Message: "must be exactly one character"}
	}
	*dst = c
	return nil
}

// CacheKey derives the identity an external cache can use to decide
// whether a converted document for source is still valid. It folds in
// the options that change the emitted record stream: header mode,
// separator, record limit and escape character.
func (o Options) CacheKey(source string) string {
	var key strings.Builder
	key.WriteString(source)
	if o.Headers {
		key.WriteString("headers")
	}
	key.WriteRune(o.Separator)
	key.WriteString(strconv.Itoa(o.MaxRecords))
	key.WriteRune(o.Escape)
	return key.String()
}
