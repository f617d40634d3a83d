package lexer

import (
	"bufio"
	"io"
	"strings"
)

// Lex reads every line from in and returns the ordered token stream. The
// caller retains ownership of in; Lex does not close it.
func Lex(in io.Reader) ([]Token, error) {
	scanner := bufio.NewScanner(in)

	var tokens []Token

	line := 0
	for scanner.Scan() {
		line++
		tokens = append(tokens, lexLine(scanner.Text(), line)...)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return tokens, nil
}

// lexLine tokenizes a single source line, character by character, with no
// backtracking, per the rules in the language surface's lexical grammar.
func lexLine(text string, line int) []Token {
	var tokens []Token

	r := []rune(text)
	i := 0

	for i < len(r) {
		c := r[i]

		switch {
		case c == '#':
			tokens = append(tokens, Token{Lexeme: string(r[i:]), Kind: Comment, Line: line})
			return tokens

		case c == '"':
			start := i + 1
			j := start

			for j < len(r) {
				if r[j] == '\\' && j+1 < len(r) {
					j += 2
					continue
				}

				if r[j] == '"' {
					break
				}

				j++
			}

			lexeme := string(r[start:j])
			tokens = append(tokens, Token{Lexeme: lexeme, Kind: QuotedString, Line: line})

			if j < len(r) {
				j++ // Skip closing quote.
			}

			i = j

		case c == ',':
			tokens = append(tokens, Token{Lexeme: ",", Kind: Delimiter, Line: line})
			i++

		case c == ':':
			tokens = append(tokens, Token{Lexeme: ":", Kind: Colon, Line: line})
			i++

		case c == '(':
			tokens = append(tokens, Token{Lexeme: "(", Kind: LeftParen, Line: line})
			i++

		case c == ')':
			tokens = append(tokens, Token{Lexeme: ")", Kind: RightParen, Line: line})
			i++

		case c == '.':
			start := i
			i++
			for i < len(r) && isIdentContinue(r[i]) {
				i++
			}

			lexeme := string(r[start:i])
			name := strings.ToLower(lexeme[1:])

			if knownDirectives[name] {
				tokens = append(tokens, Token{Lexeme: lexeme, Kind: Directive, Line: line})
			} else {
				tokens = append(tokens, Token{Lexeme: lexeme, Kind: Unknown, Line: line})
			}

		case c == '$':
			start := i
			i++
			for i < len(r) && isIdentContinue(r[i]) {
				i++
			}

			tokens = append(tokens, Token{Lexeme: string(r[start:i]), Kind: RegisterName, Line: line})

		case c == '-' && i+1 < len(r) && isDigit(r[i+1]):
			start := i
			i++
			for i < len(r) && isDigit(r[i]) {
				i++
			}

			tokens = append(tokens, Token{Lexeme: string(r[start:i]), Kind: Integer, Line: line})

		case c == '-':
			tokens = append(tokens, Token{Lexeme: "-", Kind: Unknown, Line: line})
			i++

		case isDigit(c):
			start := i
			i++
			isReal := false

			if c == '0' && i < len(r) && (r[i] == 'x' || r[i] == 'X') {
				i++
				for i < len(r) && (isDigit(r[i]) || (r[i] >= 'a' && r[i] <= 'f') || (r[i] >= 'A' && r[i] <= 'F')) {
					i++
				}

				tokens = append(tokens, Token{Lexeme: string(r[start:i]), Kind: Integer, Line: line})

				continue
			}

			for i < len(r) && (isDigit(r[i]) || r[i] == '.') {
				if r[i] == '.' {
					isReal = true
				}
				i++
			}

			kind := Integer
			if isReal {
				kind = RealNumber
			}

			tokens = append(tokens, Token{Lexeme: string(r[start:i]), Kind: kind, Line: line})

		case isIdentStart(c):
			start := i
			i++
			for i < len(r) && isIdentContinue(r[i]) {
				i++
			}

			lexeme := string(r[start:i])
			kind := Identifier

			if knownMnemonics[strings.ToLower(lexeme)] {
				kind = Mnemonic
			}

			tokens = append(tokens, Token{Lexeme: lexeme, Kind: kind, Line: line})

		case isSpace(c):
			i++

		default:
			tokens = append(tokens, Token{Lexeme: string(c), Kind: Unknown, Line: line})
			i++
		}
	}

	return tokens
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isSpace(c rune) bool { return c == ' ' || c == '\t' || c == '\r' }

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentContinue(c rune) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}
