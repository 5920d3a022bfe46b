package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Canonical is the encoding every normalized file is written in, without a BOM.
const Canonical = "utf-8"

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// ErrInvalidSequence is returned by a candidate whose decoder had to replace or
// could not reproduce part of the input.
var ErrInvalidSequence = errors.New("invalid byte sequence")

// Candidate is one named encoding tried by Normalize. Decoding is strict: it
// succeeds only for the whole buffer and never substitutes characters.
type Candidate struct {
	Name    string
	Aliases []string
	// Permissive candidates also decode most UTF-8 text, so ahead of utf-8
	// they can claim already normalized output. Only latin-1 and koi8-r accept
	// every byte sequence; windows-1251/1252 reject their few unassigned bytes
	// and utf-16 rejects odd lengths.
	Permissive bool

	decode func(data []byte) (text string, bom bool, err error)
}

// Decode decodes all of data or fails.
func (c Candidate) Decode(data []byte) (string, error) {
	text, _, err := c.decode(data)
	return text, err
}

func (c Candidate) String() string { return c.Name }

func decodeUTF8(data []byte) (string, bool, error) {
	if !utf8.Valid(data) {
		return "", false, fmt.Errorf("%w: not valid UTF-8 at byte %d", ErrInvalidSequence, firstInvalidUTF8(data))
	}
	return string(data), false, nil
}

func decodeUTF8Sig(data []byte) (string, bool, error) {
	body, bom := bytes.CutPrefix(data, utf8BOM)
	text, _, err := decodeUTF8(body)
	if err != nil {
		return "", false, err
	}
	return text, bom, nil
}

// decodeUTF16 honours a leading BOM and otherwise assumes little-endian.
func decodeUTF16(data []byte) (string, bool, error) {
	order := unicode.LittleEndian
	body := data
	bom := false
	switch {
	case bytes.HasPrefix(data, utf16LEBOM):
		body, bom = data[2:], true
	case bytes.HasPrefix(data, utf16BEBOM):
		order, body, bom = unicode.BigEndian, data[2:], true
	}
	text, _, err := decodeUTF16Order(order)(body)
	return text, bom, err
}

func decodeUTF16Order(order unicode.Endianness) func([]byte) (string, bool, error) {
	return func(data []byte) (string, bool, error) {
		if len(data)%2 != 0 {
			return "", false, fmt.Errorf("%w: odd length %d for a 16-bit encoding", ErrInvalidSequence, len(data))
		}
		text, err := roundTrip(unicode.UTF16(order, unicode.IgnoreBOM), data)
		return text, false, err
	}
}

func decodeTable(enc encoding.Encoding) func([]byte) (string, bool, error) {
	return func(data []byte) (string, bool, error) {
		text, err := roundTrip(enc, data)
		return text, false, err
	}
}

// roundTrip decodes data and re-encodes the result, accepting the decode only
// when the bytes come back unchanged. x/text decoders replace bad input with
// U+FFFD instead of failing, which this catches.
func roundTrip(enc encoding.Encoding, data []byte) (string, error) {
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSequence, err)
	}
	back, err := enc.NewEncoder().Bytes(decoded)
	if err != nil {
		return "", fmt.Errorf("%w: decoded text does not map back: %v", ErrInvalidSequence, err)
	}
	if !bytes.Equal(back, data) {
		return "", fmt.Errorf("%w near byte %d", ErrInvalidSequence, commonPrefix(back, data))
	}
	return string(decoded), nil
}

func firstInvalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}

func commonPrefix(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

var registry = []Candidate{
	{Name: "utf-8", Aliases: []string{"utf8"}, decode: decodeUTF8},
	{Name: "utf-8-sig", Aliases: []string{"utf8-sig", "utf-8-bom"}, decode: decodeUTF8Sig},
	{Name: "utf-16", Aliases: []string{"utf16"}, Permissive: true, decode: decodeUTF16},
	{Name: "utf-16le", Aliases: []string{"utf-16-le"}, Permissive: true, decode: decodeUTF16Order(unicode.LittleEndian)},
	{Name: "utf-16be", Aliases: []string{"utf-16-be"}, Permissive: true, decode: decodeUTF16Order(unicode.BigEndian)},
	{Name: "cp949", Aliases: []string{"euc-kr", "uhc", "ks-c-5601-1987"}, decode: decodeTable(korean.EUCKR)},
	{Name: "shift-jis", Aliases: []string{"sjis", "shiftjis"}, decode: decodeTable(japanese.ShiftJIS)},
	{Name: "euc-jp", Aliases: []string{"eucjp"}, decode: decodeTable(japanese.EUCJP)},
	{Name: "gbk", Aliases: []string{"cp936"}, decode: decodeTable(simplifiedchinese.GBK)},
	{Name: "gb18030", decode: decodeTable(simplifiedchinese.GB18030)},
	{Name: "big5", Aliases: []string{"cp950"}, decode: decodeTable(traditionalchinese.Big5)},
	{Name: "windows-1251", Aliases: []string{"cp1251"}, Permissive: true, decode: decodeTable(charmap.Windows1251)},
	{Name: "windows-1252", Aliases: []string{"cp1252"}, Permissive: true, decode: decodeTable(charmap.Windows1252)},
	{Name: "koi8-r", Aliases: []string{"koi8r"}, Permissive: true, decode: decodeTable(charmap.KOI8R)},
	{Name: "latin-1", Aliases: []string{"latin1", "iso-8859-1", "l1"}, Permissive: true, decode: decodeTable(charmap.ISO8859_1)},
}

var byName = func() map[string]Candidate {
	m := make(map[string]Candidate)
	for _, c := range registry {
		m[c.Name] = c
		for _, a := range c.Aliases {
			m[a] = c
		}
	}
	return m
}()

func canonicalName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// Lookup finds a candidate by name or alias, ignoring case and treating "_" as "-".
func Lookup(name string) (Candidate, error) {
	c, ok := byName[canonicalName(name)]
	if !ok {
		return Candidate{}, fmt.Errorf("unknown encoding %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Resolve looks up every name, keeping their order.
func Resolve(names []string) ([]Candidate, error) {
	cands := make([]Candidate, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		c, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		cands = append(cands, c)
	}
	return cands, nil
}

// ParseList resolves a comma-separated list such as "utf-8-sig,utf-16,cp949,latin-1".
func ParseList(list string) ([]Candidate, error) {
	return Resolve(strings.Split(list, ","))
}

// DefaultNames is the fallback order used when the caller gives none.
var DefaultNames = []string{"utf-8-sig", "utf-16", "cp949", "latin-1"}

// DefaultCandidates returns the candidates for DefaultNames.
func DefaultCandidates() []Candidate {
	cands, _ := Resolve(DefaultNames)
	return cands
}

// Known returns every registered candidate in registry order.
func Known() []Candidate {
	return append([]Candidate(nil), registry...)
}

// Names returns the primary names of all registered candidates, sorted.
func Names() []string {
	names := make([]string, len(registry))
	for i, c := range registry {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}

// CheckCandidates returns warnings about orderings under which a second run on
// already normalized output could decode differently.
func CheckCandidates(cands []Candidate) []string {
	var warnings []string
	var permissive []string
	for _, c := range cands {
		if c.Name == "utf-8" || c.Name == "utf-8-sig" {
			if len(permissive) > 0 {
				warnings = append(warnings, fmt.Sprintf("%s tried before %s and may also accept normalized output", strings.Join(permissive, ", "), c.Name))
			}
			return warnings
		}
		if c.Permissive {
			permissive = append(permissive, c.Name)
		}
	}
	return append(warnings, fmt.Sprintf("canonical encoding %s is not among the candidates", Canonical))
}
