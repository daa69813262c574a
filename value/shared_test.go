package value

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/dukt/errors"
)

type counter struct {
	n       int32
	dropped *int
}

func (c *counter) Drop() { *c.dropped++ }

type other struct{ name string }

func TestSharedCounting(t *testing.T) {
	drops := 0
	s := NewShared(counter{dropped: &drops})
	require.Equal(t, 1, s.StrongCount())

	s2 := s.Clone()
	require.Equal(t, 2, s.StrongCount())
	s2.Get().n = 5
	require.Equal(t, int32(5), s.Get().n)

	s2.Release()
	require.Equal(t, 1, s.StrongCount())
	require.Equal(t, 0, drops)

	s.Release()
	require.Equal(t, 0, s.StrongCount())
	require.Equal(t, 1, drops)

	s.Release()
	require.Equal(t, 1, drops, "extra releases are ignored")
}

func TestSharedPushPeekPop(t *testing.T) {
	c := newContext(t)
	drops := 0
	s := NewShared(counter{n: 1, dropped: &drops})

	idx, err := Push(c, s.Clone())
	require.NoError(t, err)
	require.Equal(t, 2, s.StrongCount(), "the pushed reference moves into the arena")
	require.Equal(t, 1, c.Resources().Len())
	require.True(t, c.IsObject(idx))

	peeked, err := Peek[Shared[counter]](c, idx)
	require.NoError(t, err)
	require.Equal(t, 3, s.StrongCount())
	require.Same(t, s.Get(), peeked.Get())
	peeked.Release()

	popped, err := Pop[Shared[counter]](c)
	require.NoError(t, err)
	require.Equal(t, 2, s.StrongCount(), "pop takes over the arena's reference")
	require.Equal(t, 0, c.Resources().Len())
	require.Equal(t, 0, c.Top())

	popped.Release()
	s.Release()
	require.Equal(t, 1, drops)
}

func TestSharedKeysHidden(t *testing.T) {
	c := newContext(t)
	_, err := Push(c, NewShared(other{"x"}))
	require.NoError(t, err)
	require.Equal(t, "{}", stringify(t, c))
}

func TestSharedTypeMismatch(t *testing.T) {
	c := newContext(t)
	idx, err := Push(c, NewShared(other{"x"}))
	require.NoError(t, err)

	_, err = Peek[Shared[counter]](c, idx)
	e := requireKind(t, err, errors.KindTypeMismatch)
	require.Contains(t, e.Detail, "other")

	_, err = Eval[Shared[counter]](c, "({})")
	requireKind(t, err, errors.KindTypeMismatch)

	_, err = Eval[Shared[counter]](c, "1")
	requireKind(t, err, errors.KindTypeMismatch)
}

func TestSharedStaleHandle(t *testing.T) {
	c := newContext(t)
	s := NewShared(other{"x"})

	_, err := Push(c, s.Clone())
	require.NoError(t, err)
	c.Dup(-1)
	c.PutGlobalString("handle")

	popped, err := Pop[Shared[other]](c)
	require.NoError(t, err)
	popped.Release()

	require.True(t, c.GetGlobalString("handle"))
	_, err = Pop[Shared[other]](c)
	requireKind(t, err, errors.KindStaleHandle)
}

func TestSharedReleasedOnClose(t *testing.T) {
	c := newContext(t)
	drops := 0
	_, err := Push(c, NewShared(counter{dropped: &drops}))
	require.NoError(t, err)
	require.Equal(t, 0, drops)

	require.NoError(t, c.Close())
	require.Equal(t, 1, drops)
}

func TestSharedNested(t *testing.T) {
	c := newContext(t)
	type holder struct {
		Name   string          `dukt:"name"`
		Handle Shared[counter] `dukt:"handle"`
	}
	drops := 0
	s := NewShared(counter{n: 9, dropped: &drops})

	idx, err := Push(c, holder{Name: "h", Handle: s.Clone()})
	require.NoError(t, err)

	h, err := Peek[holder](c, idx)
	require.NoError(t, err)
	require.Equal(t, int32(9), h.Handle.Get().n)
	require.Equal(t, 3, s.StrongCount())
	h.Handle.Release()
}

func TestSharedNil(t *testing.T) {
	c := newContext(t)
	var s Shared[counter]
	require.False(t, s.Valid())
	_, err := Push(c, s)
	requireKind(t, err, errors.KindNilPointer)
}
