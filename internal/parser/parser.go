// Package parser turns unilang instruction text into GenericInstruction values.
// It handles quoting, escaping, named arguments, help requests and instruction separators,
// and reports precise source locations for every error.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"unilang/internal/logger"

	"github.com/charmbracelet/log"
)

// Options controls optional strictness of the parser.
type Options struct {
	// QuoteChars lists the characters that open and close quoted spans.
	QuoteChars string
	// ErrorOnPositionalAfterNamed rejects positional arguments following a named one.
	ErrorOnPositionalAfterNamed bool
	// ErrorOnDuplicateNamedArguments rejects a named argument given more than once.
	ErrorOnDuplicateNamedArguments bool
}

// DefaultOptions returns the permissive default parser configuration.
func DefaultOptions() Options {
	return Options{QuoteChars: `"'`}
}

// Parser converts instruction text to GenericInstruction values. It holds no state
// between calls and is safe for concurrent use.
type Parser struct {
	options Options
	logger  *log.Logger
}

// New creates a Parser with the given options.
func New(options Options) *Parser {
	if options.QuoteChars == "" {
		options.QuoteChars = DefaultOptions().QuoteChars
	}
	return &Parser{
		options: options,
		logger:  logger.NewStyledLogger("Parser"),
	}
}

var defaultParser = New(DefaultOptions())

// ParseSingleInstruction parses input with the default options.
func ParseSingleInstruction(input string) (GenericInstruction, error) {
	return defaultParser.ParseSingleInstruction(input)
}

// ParseSingleStr parses input with the default options.
func ParseSingleStr(input string) ([]GenericInstruction, error) {
	return defaultParser.ParseSingleStr(input)
}

// ParseArgv parses process arguments with the default options.
func ParseArgv(argv []string) ([]GenericInstruction, error) {
	return defaultParser.ParseArgv(argv)
}

// ParseSlice parses items with the default options.
func ParseSlice(items []string) ([]GenericInstruction, error) {
	return defaultParser.ParseSlice(items)
}

// ParseSingleInstruction parses input that must hold exactly one instruction.
// Empty input yields an empty instruction.
func (p *Parser) ParseSingleInstruction(input string) (GenericInstruction, error) {
	tokens, err := p.newTokenizer(0, false).tokenize(input)
	if err != nil {
		return GenericInstruction{}, err
	}

	groups := splitGroups(tokens)
	if len(groups) > 1 {
		sep := firstSeparatorAfter(tokens, groups[0])
		return GenericInstruction{}, newParseError(ErrorKindMultipleInstructions, sep.location(),
			"Unexpected instruction separator '%s': expected a single instruction", instructionSeparator)
	}
	if len(groups) == 0 {
		return GenericInstruction{NamedArguments: map[string][]Argument{}, OverallLocation: StrSpan(0, 0)}, nil
	}
	return p.parseInstruction(groups[0])
}

// ParseSingleStr parses input holding zero or more instructions separated by ";;".
// Empty groups around separators are dropped.
func (p *Parser) ParseSingleStr(input string) ([]GenericInstruction, error) {
	p.logger.Debug("Parsing input", "input", input)

	tokens, err := p.newTokenizer(0, false).tokenize(input)
	if err != nil {
		return nil, err
	}
	return p.parseGroups(tokens)
}

// ParseSlice parses pre-split segments, for example process arguments. Each segment is
// tokenized on its own; locations refer to the segment index.
func (p *Parser) ParseSlice(items []string) ([]GenericInstruction, error) {
	p.logger.Debug("Parsing slice", "segments", len(items))

	var tokens []token
	for i, item := range items {
		segmentTokens, err := p.newTokenizer(i, true).tokenize(item)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, segmentTokens...)
	}
	return p.parseGroups(tokens)
}

// ParseArgv parses process arguments as delivered by the operating system. Every element
// is taken literally as one token. A name::value element absorbs the elements that follow
// it into its value, joined by a space, until an element that holds "::", starts with "."
// or is exactly ";;". Locations refer to the argv index.
func (p *Parser) ParseArgv(argv []string) ([]GenericInstruction, error) {
	p.logger.Debug("Parsing argv", "elements", len(argv))

	tokens := make([]token, 0, len(argv))
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		tok := token{kind: tokenWord, text: arg, delim: -1, end: len(arg), segment: i, inSlice: true}

		switch {
		case arg == instructionSeparator:
			tok.kind = tokenSeparator
		case strings.Contains(arg, namedArgDelimiter):
			name, value, _ := strings.Cut(arg, namedArgDelimiter)
			for i+1 < len(argv) && !endsArgvValue(argv[i+1]) {
				if value != "" {
					value += " "
				}
				value += argv[i+1]
				i++
			}
			tok.text = name + namedArgDelimiter + value
			tok.delim = len(name)
			tok.quoted = true
		default:
			tok.quoted = arg == "" || strings.ContainsFunc(arg, unicode.IsSpace)
		}
		tokens = append(tokens, tok)
	}
	return p.parseGroups(tokens)
}

// endsArgvValue reports whether an argv element starts a new argument, command or instruction.
func endsArgvValue(arg string) bool {
	return arg == instructionSeparator || strings.HasPrefix(arg, ".") || strings.Contains(arg, namedArgDelimiter)
}

func (p *Parser) newTokenizer(segment int, inSlice bool) *tokenizer {
	return &tokenizer{quotes: p.options.QuoteChars, segment: segment, inSlice: inSlice}
}

func (p *Parser) parseGroups(tokens []token) ([]GenericInstruction, error) {
	groups := splitGroups(tokens)
	instructions := make([]GenericInstruction, 0, len(groups))
	for _, group := range groups {
		instruction, err := p.parseInstruction(group)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, instruction)
	}
	p.logger.Debug("Parsed instructions", "count", len(instructions))
	return instructions, nil
}

// splitGroups splits tokens on separators, dropping empty groups.
func splitGroups(tokens []token) [][]token {
	var groups [][]token
	var current []token
	for _, t := range tokens {
		if t.kind == tokenSeparator {
			if len(current) > 0 {
				groups = append(groups, current)
			}
			current = nil
			continue
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func firstSeparatorAfter(tokens []token, group []token) token {
	last := group[len(group)-1]
	for _, t := range tokens {
		if t.kind == tokenSeparator && (t.segment > last.segment || (t.segment == last.segment && t.start >= last.end)) {
			return t
		}
	}
	return last
}

func (p *Parser) parseInstruction(tokens []token) (GenericInstruction, error) {
	instruction := GenericInstruction{
		NamedArguments:  make(map[string][]Argument),
		OverallLocation: tokens[0].location().Cover(tokens[len(tokens)-1].location()),
	}

	i := 0
	if isPathCandidate(tokens[0]) {
		path, err := parseCommandPath(tokens[0])
		if err != nil {
			return GenericInstruction{}, err
		}
		instruction.CommandPathSlices = path
		i = 1
	}

	if err := p.parseArguments(tokens[i:], &instruction); err != nil {
		return GenericInstruction{}, err
	}
	return instruction, nil
}

// isPathCandidate reports whether the first token of an instruction names a command.
func isPathCandidate(t token) bool {
	if t.quoted || t.delim >= 0 || t.text == helpOperator || t.text == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(t.text)
	return r == '.' || r == '_' || unicode.IsLetter(r)
}

// parseCommandPath splits a single dotted token into path segments.
// A leading dot is optional; a bare "." is the empty path.
func parseCommandPath(t token) ([]string, error) {
	body := t.text
	offset := t.start
	if strings.HasPrefix(body, ".") {
		body = body[1:]
		offset++
	}
	if body == "" {
		return []string{}, nil
	}

	segments := strings.Split(body, ".")
	path := make([]string, 0, len(segments))
	pos := offset
	for idx, segment := range segments {
		if segment == "" {
			if idx == len(segments)-1 {
				return nil, newParseError(ErrorKindSyntax, t.span(t.end-1, t.end), "Command path cannot end with a '.'")
			}
			return nil, newParseError(ErrorKindSyntax, t.span(pos-1, pos+1), "Consecutive dots in command path")
		}
		if strings.Contains(segment, "-") {
			return nil, newParseError(ErrorKindSyntax, t.span(pos, pos+len(segment)),
				"Invalid character '-' in command path segment '%s'", segment)
		}
		if !isIdentifier(segment) {
			return nil, newParseError(ErrorKindSyntax, t.span(pos, pos+len(segment)),
				"Invalid identifier '%s' in command path", segment)
		}
		path = append(path, segment)
		pos += len(segment) + 1
	}
	return path, nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}

func (p *Parser) parseArguments(tokens []token, instruction *GenericInstruction) error {
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]

		switch {
		case t.isBare(helpOperator):
			instruction.HelpRequested = true
			continue
		case t.isBare(namedArgDelimiter) || t.delim == 0:
			return newParseError(ErrorKindSyntax, t.span(t.start, t.start+len(namedArgDelimiter)),
				"Unexpected token '%s' in arguments", namedArgDelimiter)
		}

		var (
			arg      Argument
			consumed int
			err      error
		)
		switch {
		case t.delim > 0:
			arg, consumed, err = namedFromInline(tokens, i)
		case !t.quoted && i+1 < len(tokens) && (tokens[i+1].isBare(namedArgDelimiter) || tokens[i+1].delim == 0):
			arg, consumed, err = namedFromSpaced(tokens, i)
		default:
			if p.options.ErrorOnPositionalAfterNamed && len(instruction.NamedArguments) > 0 {
				return newParseError(ErrorKindPositionalAfterNamed, t.location(), "Positional argument after named argument")
			}
			instruction.PositionalArguments = append(instruction.PositionalArguments, Argument{
				Value:         t.text,
				ValueLocation: t.location(),
			})
			continue
		}
		if err != nil {
			return err
		}
		i += consumed

		if arg.Value == helpValue && arg.ValueLocation.Len() == len(helpValue) {
			instruction.HelpRequested = true
			continue
		}
		if p.options.ErrorOnDuplicateNamedArguments && len(instruction.NamedArguments[arg.Name]) > 0 {
			return newParseError(ErrorKindDuplicateNamedArgument, arg.NameLocation, "Duplicate named argument '%s'", arg.Name)
		}
		instruction.NamedArguments[arg.Name] = append(instruction.NamedArguments[arg.Name], arg)
	}
	return nil
}

// namedFromInline builds a named argument from a token of the form name::value. When the
// value is empty and unquoted, the next token supplies it. It returns the number of extra
// tokens consumed.
func namedFromInline(tokens []token, i int) (Argument, int, error) {
	t := tokens[i]
	name := t.text[:t.delim]
	nameStart := t.start
	arg := Argument{
		Name:         name,
		NameLocation: t.span(nameStart, nameStart+len(name)),
	}

	value := t.text[t.delim+len(namedArgDelimiter):]
	if value != "" || t.quoted {
		arg.Value = value
		arg.ValueLocation = t.span(nameStart+len(name)+len(namedArgDelimiter), t.end)
		return arg, 0, nil
	}

	next, err := valueToken(tokens, i+1, name, t)
	if err != nil {
		return Argument{}, 0, err
	}
	arg.Value = next.text
	arg.ValueLocation = next.location()
	return arg, 1, nil
}

// namedFromSpaced builds a named argument from "name :: value" or "name ::value".
func namedFromSpaced(tokens []token, i int) (Argument, int, error) {
	t := tokens[i]
	op := tokens[i+1]
	arg := Argument{Name: t.text, NameLocation: t.location()}

	if !op.isBare(namedArgDelimiter) {
		value := op.text[len(namedArgDelimiter):]
		if value != "" || op.quoted {
			arg.Value = value
			arg.ValueLocation = op.span(op.start+len(namedArgDelimiter), op.end)
			return arg, 1, nil
		}
	}

	next, err := valueToken(tokens, i+2, t.text, op)
	if err != nil {
		return Argument{}, 0, err
	}
	arg.Value = next.text
	arg.ValueLocation = next.location()
	return arg, 2, nil
}

func valueToken(tokens []token, idx int, name string, owner token) (token, error) {
	if idx >= len(tokens) {
		return token{}, newParseError(ErrorKindSyntax, owner.location(),
			"Expected value for named argument '%s' but found end of instruction", name)
	}
	next := tokens[idx]
	if next.isBare(helpOperator) || next.isBare(namedArgDelimiter) || next.delim >= 0 {
		return token{}, newParseError(ErrorKindSyntax, next.location(),
			"Expected value for named argument '%s'", name)
	}
	return next, nil
}
