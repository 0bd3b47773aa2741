// Package confirm gates destructive actions behind an injected yes/no
// decision so that callers, not the ledger, own the interaction.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Action describes the operation awaiting confirmation.
type Action struct {
	Kind     string // e.g. "delete-transaction"
	TargetID string
	Prompt   string
}

const (
	KindDeleteTransaction = "delete-transaction"
	KindDeleteBudget      = "delete-budget"
)

// DeleteTransaction and DeleteBudget build the actions used by the delete
// flows, with the prompts shown to users.
func DeleteTransaction(id string) Action {
	return Action{Kind: KindDeleteTransaction, TargetID: id, Prompt: "Are you sure you want to delete this transaction?"}
}

func DeleteBudget(id string) Action {
	return Action{Kind: KindDeleteBudget, TargetID: id, Prompt: "Are you sure you want to delete this budget?"}
}

// Provider decides whether an action may proceed. A false answer with a nil
// error is a refusal.
type Provider interface {
	Confirm(ctx context.Context, a Action) (bool, error)
}

// Func adapts a function to Provider.
type Func func(ctx context.Context, a Action) (bool, error)

func (f Func) Confirm(ctx context.Context, a Action) (bool, error) {
	return f(ctx, a)
}

// Always approves every action. Never refuses every action.
var (
	Always Provider = Func(func(context.Context, Action) (bool, error) { return true, nil })
	Never  Provider = Func(func(context.Context, Action) (bool, error) { return false, nil })
)

// ErrNoAnswer is returned by ContextAnswer when the context carries no answer.
var ErrNoAnswer = errors.New("no confirmation answer in context")

type answerKey struct{}

// WithAnswer returns a context carrying a pre-recorded answer, typically the
// request's confirm field.
func WithAnswer(ctx context.Context, yes bool) context.Context {
	return context.WithValue(ctx, answerKey{}, yes)
}

// ContextAnswer answers from the value stored by WithAnswer. Without one it
// refuses and returns ErrNoAnswer.
type ContextAnswer struct{}

func (ContextAnswer) Confirm(ctx context.Context, _ Action) (bool, error) {
	yes, ok := ctx.Value(answerKey{}).(bool)
	if !ok {
		return false, ErrNoAnswer
	}
	return yes, nil
}

// ParseAnswer interprets a yes/no string. Only y, yes, true, 1 and on are yes.
func ParseAnswer(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "on":
		return true
	}
	return false
}

// Terminal prompts on Out and reads one line from In. Anything other than a
// yes answer, including end of input, is a refusal.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	once   sync.Once
	reader *bufio.Reader
	mu     sync.Mutex
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{In: in, Out: out}
}

func (t *Terminal) Confirm(ctx context.Context, a Action) (bool, error) {
	t.once.Do(func() { t.reader = bufio.NewReader(t.In) })
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	prompt := a.Prompt
	if prompt == "" {
		prompt = fmt.Sprintf("Proceed with %s %s?", a.Kind, a.TargetID)
	}
	if _, err := fmt.Fprintf(t.Out, "%s [y/N] ", prompt); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	line, err := t.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	return ParseAnswer(line), nil
}
