package safe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not finish")
		return nil
	}
}

func TestGoErr_ReturnsResult(t *testing.T) {
	want := errors.New("stream closed")
	got := waitErr(t, GoErr(context.Background(), func() error { return want }))
	assert.Equal(t, want, got)
}

func TestGoErr_Nil(t *testing.T) {
	assert.NoError(t, waitErr(t, GoErr(context.Background(), func() error { return nil })))
}

func TestGoErr_PanicBecomesError(t *testing.T) {
	err := waitErr(t, GoErr(context.Background(), func() error { panic("handler blew up") }))
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "handler blew up", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestGoCtx_RecoversPanic(t *testing.T) {
	done := make(chan struct{})
	GoCtx(context.Background(), func(ctx context.Context) {
		defer close(done)
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not run")
	}
}
