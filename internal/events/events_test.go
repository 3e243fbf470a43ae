package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Notify(Validate("assets"))
	r.Notify(Progress("assets", 1, 2))
	r.Notify(Error("assets", errors.New("boom")))

	require.Len(t, r.Events(), 3)
	assert.Len(t, r.OfKind(KindProgress), 1)
	assert.Equal(t, "assets", r.OfKind(KindValidate)[0].Phase)
}

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Multi(a, b).Notify(Validate("x"))

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestChannelObserver(t *testing.T) {
	o := NewChannelObserver(1)
	o.Notify(Progress("files", 3, 4))

	e := <-o.C
	assert.Equal(t, int64(3), e.Done)
}

func TestThrottle(t *testing.T) {
	r := &Recorder{}
	th := NewThrottle(r)

	th.Notify(Progress("assets", 1, 1000))  // 0%
	th.Notify(Progress("assets", 5, 1000))  // 0%, dropped
	th.Notify(Progress("assets", 10, 1000)) // 1%
	th.Notify(Progress("libraries", 0, 10))
	th.Notify(Validate("files"))
	th.Notify(Progress("assets", 1000, 1000))
	th.Notify(Progress("empty", 0, 0))

	progress := r.OfKind(KindProgress)
	require.Len(t, progress, 5)
	assert.Equal(t, int64(1), progress[0].Done)
	assert.Equal(t, int64(10), progress[1].Done)
	assert.Equal(t, "libraries", progress[2].Category)
	assert.Equal(t, int64(1000), progress[3].Done)
	assert.Equal(t, "empty", progress[4].Category)
	assert.Len(t, r.OfKind(KindValidate), 1)
}
