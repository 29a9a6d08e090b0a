package command

import "strings"

// ParseResult holds the argument vector parsed from a denoted command line.
type ParseResult struct {
	// Verb is argv[0], lowercased. Empty when the line held only the
	// denoter.
	Verb string
	// Argv is the full argument vector, verb included, original casing.
	Argv []string
}

// Parse strips the denoter from content and splits the remainder on
// whitespace into an argument vector.
//
// Precondition: content must start with denoter (callers check with
// strings.HasPrefix before routing here).
// Postcondition: Returns a ParseResult; Verb is empty if no arguments
// followed the denoter.
func Parse(denoter, content string) ParseResult {
	rest := strings.TrimSpace(content[len(denoter):])
	if rest == "" {
		return ParseResult{}
	}

	argv := strings.Fields(rest)
	return ParseResult{
		Verb: strings.ToLower(argv[0]),
		Argv: argv,
	}
}
