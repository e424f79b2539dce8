package command

import (
	"context"
	"errors"
	"strings"

	"github.com/tbxark/reliefwizard/field"
)

var ErrNoParser = errors.New("no command parser configured")

// LocalCommandParser matches whole-line keywords. Anything else is None.
type LocalCommandParser struct {
	Keywords map[Command][]string
}

func NewLocalCommandParser() *LocalCommandParser {
	return &LocalCommandParser{
		Keywords: map[Command][]string{
			Next:   {"next", "continue", "n", "下一步", "继续"},
			Back:   {"back", "previous", "prev", "b", "返回", "上一步"},
			Submit: {"submit", "send", "confirm", "提交", "确认"},
			Cancel: {"cancel", "quit", "exit", "abort", "取消", "退出"},
			Login:  {"login", "sign in", "signin", "登录"},
			Save:   {"save", "save draft", "保存"},
			Help:   {"help", "?", "帮助"},
		},
	}
}

func (p *LocalCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	normalized := strings.ToLower(field.TrimText(req.Input))
	normalized = strings.TrimPrefix(normalized, "/")
	if normalized == "" {
		return None, nil
	}
	for _, cmd := range []Command{Cancel, Submit, Back, Next, Login, Save, Help} {
		for _, keyword := range p.Keywords[cmd] {
			if normalized == keyword {
				return cmd, nil
			}
		}
	}
	return None, nil
}

// FailbackCommandParser returns the answer of the first parser that does
// not fail.
type FailbackCommandParser struct {
	parsers []Parser
}

func NewFailbackCommandParser(parsers ...Parser) *FailbackCommandParser {
	return &FailbackCommandParser{parsers: parsers}
}

func (p *FailbackCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	lastErr := ErrNoParser
	for _, parser := range p.parsers {
		cmd, err := parser.ParseCommand(ctx, req)
		if err == nil {
			return cmd, nil
		}
		lastErr = err
	}
	return None, lastErr
}

// KeywordFirstParser tries the local keywords and only asks next when the
// input is not an exact keyword.
type KeywordFirstParser struct {
	local *LocalCommandParser
	next  Parser
}

func NewKeywordFirstParser(next Parser) *KeywordFirstParser {
	return &KeywordFirstParser{local: NewLocalCommandParser(), next: next}
}

func (p *KeywordFirstParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	cmd, _ := p.local.ParseCommand(ctx, req)
	if cmd != None || p.next == nil {
		return cmd, nil
	}
	return p.next.ParseCommand(ctx, req)
}
