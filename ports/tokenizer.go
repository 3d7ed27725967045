package ports

import "github.com/layer-3/gmstreak/core"

// Tokenizer converts between sessions and portable tokens
type Tokenizer interface {
	SessionToToken(session *core.Session) (string, error)
	TokenToSession(token string) (*core.Session, error)
}
