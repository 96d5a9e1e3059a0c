package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrompterConfirm(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("Y\nno\n yes \n"), &out)
	ctx := context.Background()

	for _, want := range []bool{true, false, true} {
		got, err := p.Confirm(ctx, "Overwrite?")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.Contains(t, out.String(), "Overwrite? [y/n]: ")

	_, err := p.Confirm(ctx, "Again?")
	require.ErrorIs(t, err, io.EOF)
}

func TestPrompterAskWithoutTrailingNewline(t *testing.T) {
	t.Parallel()

	p := NewPrompter(strings.NewReader("Drama"), io.Discard)
	answer, err := p.Ask(context.Background(), "Genre")
	require.NoError(t, err)
	require.Equal(t, "Drama", answer)
}

func TestPrompterHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPrompter(strings.NewReader("y\n"), io.Discard)
	_, err := p.Ask(ctx, "Genre")
	require.ErrorIs(t, err, context.Canceled)
}

func TestScripted(t *testing.T) {
	t.Parallel()

	s := NewScripted("drama", "n")
	ctx := context.Background()

	answer, err := s.Ask(ctx, "Genre")
	require.NoError(t, err)
	require.Equal(t, "drama", answer)

	ok, err := s.Confirm(ctx, "Watch?")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Ask(ctx, "Genre")
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, []string{"Genre", "Watch?", "Genre"}, s.Questions)
	require.Zero(t, s.Remaining())
}
