package confirm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlwaysNever(t *testing.T) {
	ctx := context.Background()
	ok, err := Always.Confirm(ctx, DeleteBudget("b1"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Never.Confirm(ctx, DeleteBudget("b1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFuncSeesAction(t *testing.T) {
	var seen Action
	p := Func(func(_ context.Context, a Action) (bool, error) {
		seen = a
		return true, nil
	})
	_, _ = p.Confirm(context.Background(), DeleteTransaction("t9"))
	assert.Equal(t, KindDeleteTransaction, seen.Kind)
	assert.Equal(t, "t9", seen.TargetID)
	assert.NotEmpty(t, seen.Prompt)
}

func TestContextAnswer(t *testing.T) {
	var p ContextAnswer

	_, err := p.Confirm(context.Background(), DeleteTransaction("x"))
	assert.ErrorIs(t, err, ErrNoAnswer)

	ok, err := p.Confirm(WithAnswer(context.Background(), true), DeleteTransaction("x"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm(WithAnswer(context.Background(), false), DeleteTransaction("x"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTerminal(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("y\nno\nYES\n"), &out)
	ctx := context.Background()

	answers := []bool{}
	for i := 0; i < 4; i++ {
		ok, err := term.Confirm(ctx, DeleteTransaction("t1"))
		require.NoError(t, err)
		answers = append(answers, ok)
	}
	// the fourth read hits end of input
	assert.Equal(t, []bool{true, false, true, false}, answers)
	assert.Contains(t, out.String(), "Are you sure you want to delete this transaction? [y/N] ")
}

func TestTerminalDefaultPromptAndCancel(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("\n"), &out)

	ok, err := term.Confirm(context.Background(), Action{Kind: "purge", TargetID: "all"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Proceed with purge all?")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = term.Confirm(ctx, Action{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseAnswer(t *testing.T) {
	for _, s := range []string{"y", "Yes", " true ", "1", "on"} {
		assert.True(t, ParseAnswer(s), s)
	}
	for _, s := range []string{"", "n", "nope", "0"} {
		assert.False(t, ParseAnswer(s), s)
	}
}
