package ignorefile

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind identifies the kind of a rule token.
type TokenKind int

const (
	// TokenText is a literal run of letters, digits and underscores.
	TokenText TokenKind = iota
	// TokenSeparator is a single path delimiter.
	TokenSeparator
	// TokenSingleStar matches zero or more non-separator characters.
	TokenSingleStar
	// TokenDoubleStar matches zero or more characters including separators.
	TokenDoubleStar
	// TokenQuestionMark matches zero or one non-separator character.
	TokenQuestionMark
	// TokenComment is reserved for comment lines. The tokenizer never
	// produces it; comment syntax is rejected as unsupported.
	TokenComment
)

// String returns a human-readable representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "TEXT"
	case TokenSeparator:
		return "SEPARATOR"
	case TokenSingleStar:
		return "SINGLE_STAR"
	case TokenDoubleStar:
		return "DOUBLE_STAR"
	case TokenQuestionMark:
		return "QUESTION_MARK"
	case TokenComment:
		return "COMMENT"
	default:
		return "UNKNOWN"
	}
}

// Token is one atomic unit of a parsed rule line.
type Token struct {
	Kind TokenKind
	// Text holds the literal for TokenText and is empty otherwise.
	Text string
}

// String renders the token back into rule syntax.
func (t Token) String() string {
	switch t.Kind {
	case TokenText:
		return t.Text
	case TokenSeparator:
		return "/"
	case TokenSingleStar:
		return "*"
	case TokenDoubleStar:
		return "**"
	case TokenQuestionMark:
		return "?"
	default:
		return ""
	}
}

// Convenience constructors, mostly used by tests.
var (
	Separator    = Token{Kind: TokenSeparator}
	SingleStar   = Token{Kind: TokenSingleStar}
	DoubleStar   = Token{Kind: TokenDoubleStar}
	QuestionMark = Token{Kind: TokenQuestionMark}
)

// Text returns a literal text token.
func Text(s string) Token {
	return Token{Kind: TokenText, Text: s}
}

// Tokenize splits a rule line into tokens. The whole line must be consumed;
// an empty line yields an empty, non-nil sequence.
//
// Rules are always written with '/' regardless of the platform delimiter.
func Tokenize(line string) ([]Token, error) {
	tokens := make([]Token, 0, 8)

	i := 0
	for i < len(line) {
		c := line[i]

		switch {
		case c == '*':
			j := i
			for j < len(line) && line[j] == '*' {
				j++
			}
			// Three or more stars behave exactly like two.
			if j-i == 1 {
				tokens = append(tokens, SingleStar)
			} else {
				tokens = append(tokens, DoubleStar)
			}
			i = j

		case c == '?':
			tokens = append(tokens, QuestionMark)
			i++

		case c == '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return nil, fmt.Errorf("ambiguous repeated separator at column %d", i+1)
			}
			tokens = append(tokens, Separator)
			i++

		default:
			j := i
			for j < len(line) {
				r, size := utf8.DecodeRuneInString(line[j:])
				if !isTextRune(r) {
					break
				}
				j += size
			}
			if j == i {
				r, _ := utf8.DecodeRuneInString(line[i:])
				return nil, fmt.Errorf("unsupported rule syntax %q at column %d", r, i+1)
			}
			tokens = append(tokens, Text(line[i:j]))
			i = j
		}
	}

	return tokens, nil
}

// isTextRune reports whether r may appear in a literal text token.
func isTextRune(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// FormatTokens renders a token sequence back into rule syntax.
func FormatTokens(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.String())
	}
	return sb.String()
}
