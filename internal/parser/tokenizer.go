package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	instructionSeparator = ";;"
	namedArgDelimiter    = "::"
	helpOperator         = "?"
	helpValue            = "??"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenSeparator
)

// token is one whitespace-delimited item with quotes stripped and escapes resolved.
// delim is the offset in text of the first "::" seen before any quote, or -1.
type token struct {
	kind    tokenKind
	text    string
	quoted  bool
	delim   int
	start   int
	end     int
	segment int
	inSlice bool
}

func (t token) location() SourceLocation {
	return t.span(t.start, t.end)
}

func (t token) span(start, end int) SourceLocation {
	if t.inSlice {
		return SliceSegment(t.segment, start, end)
	}
	return StrSpan(start, end)
}

// isBare reports whether the token is unquoted text equal to s.
func (t token) isBare(s string) bool {
	return t.kind == tokenWord && !t.quoted && t.text == s
}

// tokenizer splits one source string into tokens. Quote characters open spans in which
// whitespace and separators are literal.
type tokenizer struct {
	quotes  string
	segment int
	inSlice bool
}

func (z *tokenizer) loc(start, end int) SourceLocation {
	if z.inSlice {
		return SliceSegment(z.segment, start, end)
	}
	return StrSpan(start, end)
}

func (z *tokenizer) isQuote(r rune) bool {
	return strings.ContainsRune(z.quotes, r)
}

func (z *tokenizer) tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		r, w := utf8.DecodeRuneInString(src[i:])
		if unicode.IsSpace(r) {
			i += w
			continue
		}
		if strings.HasPrefix(src[i:], instructionSeparator) {
			tokens = append(tokens, token{
				kind: tokenSeparator, text: instructionSeparator, delim: -1,
				start: i, end: i + len(instructionSeparator), segment: z.segment, inSlice: z.inSlice,
			})
			i += len(instructionSeparator)
			continue
		}

		tok, next, err := z.scanWord(src, i)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		i = next
	}
	return tokens, nil
}

// scanWord reads one word starting at start and returns it with the offset after it.
func (z *tokenizer) scanWord(src string, start int) (token, int, error) {
	var b strings.Builder
	tok := token{kind: tokenWord, delim: -1, start: start, segment: z.segment, inSlice: z.inSlice}
	i := start

	for i < len(src) {
		r, w := utf8.DecodeRuneInString(src[i:])
		if unicode.IsSpace(r) || strings.HasPrefix(src[i:], instructionSeparator) {
			break
		}

		if z.isQuote(r) {
			next, err := z.scanQuoted(src, i, r, &b)
			if err != nil {
				return token{}, 0, err
			}
			tok.quoted = true
			i = next
			continue
		}

		if !tok.quoted && tok.delim < 0 && strings.HasPrefix(src[i:], namedArgDelimiter) {
			tok.delim = b.Len()
			b.WriteString(namedArgDelimiter)
			i += len(namedArgDelimiter)
			continue
		}

		b.WriteString(src[i : i+w])
		i += w
	}

	tok.text = b.String()
	tok.end = i
	return tok, i, nil
}

// scanQuoted consumes a quoted span opened by quote at start and writes its content to b.
// It returns the offset after the closing quote.
func (z *tokenizer) scanQuoted(src string, start int, quote rune, b *strings.Builder) (int, error) {
	i := start + utf8.RuneLen(quote)
	for i < len(src) {
		r, w := utf8.DecodeRuneInString(src[i:])
		if r == '\\' && i+w < len(src) {
			n, nw := utf8.DecodeRuneInString(src[i+w:])
			switch n {
			case quote, '\\':
				b.WriteRune(n)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte('\\')
				b.WriteString(src[i+w : i+w+nw])
			}
			i += w + nw
			continue
		}
		if r == quote {
			return i + w, nil
		}
		b.WriteString(src[i : i+w])
		i += w
	}

	name := "single"
	if quote == '"' {
		name = "double"
	}
	return 0, newParseError(ErrorKindUnclosedQuote, z.loc(start, len(src)), "Unclosed %s quote", name)
}
