package token

// Builder assembles a File token by token for hosts that do not run the PHP
// tokenizer. Tokens are laid out on lines separated by a single space.
type Builder struct {
	path   string
	tokens []Token
	line   int
	column int
}

func NewBuilder(path string) *Builder {
	return &Builder{path: path}
}

// Add appends a token of the given kind.
func (b *Builder) Add(kind Kind, content string) *Builder {
	b.tokens = append(b.tokens, Token{
		Kind:    kind,
		Content: content,
		Line:    b.line,
		Column:  b.column,
	})
	b.column += len(content) + 1
	return b
}

// Open appends a curly opener owned by a construct of the given scope.
func (b *Builder) Open(scope ScopeKind) *Builder {
	b.Add(KindOpenCurly, "{")
	b.tokens[len(b.tokens)-1].Scope = scope
	return b
}

func (b *Builder) Close() *Builder {
	return b.Add(KindCloseCurly, "}")
}

// Name appends a possibly qualified name as name and separator tokens.
func (b *Builder) Name(qualified string) *Builder {
	start := 0
	for i := 0; i < len(qualified); i++ {
		if qualified[i] != '\\' {
			continue
		}
		if i > start {
			b.Add(KindName, qualified[start:i])
		}
		b.Add(KindNsSeparator, "\\")
		start = i + 1
	}
	if start < len(qualified) {
		b.Add(KindName, qualified[start:])
	}
	return b
}

func (b *Builder) Newline() *Builder {
	b.line++
	b.column = 0
	return b
}

// Len returns the number of tokens added so far, which is also the position
// the next token will receive.
func (b *Builder) Len() int {
	return len(b.tokens)
}

func (b *Builder) File() *File {
	tokens := make([]Token, len(b.tokens))
	copy(tokens, b.tokens)
	return NewFile(b.path, tokens)
}
