package lexer

import (
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/token"
)

// LexerProcessor scans the unit's source. Each ILLEGAL token is reported as a
// LexError and dropped from the stream handed to the parser.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	all := Tokenize(ctx.SourceCode)
	kept := make([]token.Token, 0, len(all))
	for _, tok := range all {
		if tok.Type == token.ILLEGAL {
			msg, _ := tok.Literal.(string)
			if msg == "" {
				msg = "invalid token " + tok.Lexeme
			}
			ctx.AddError(diagnostics.NewError(diagnostics.ErrL001, tok, msg))
			continue
		}
		kept = append(kept, tok)
	}
	ctx.TokenStream = NewBufferedStream(kept)
	return ctx
}
