package relay

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/formcalc/internal/ctxlog"
	"github.com/zishang520/socket.io-client-go/socket"
)

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLog(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), Update{Form: "order", Field: "total", Value: "42"}))
	require.NoError(t, p.Publish(context.Background(), Update{Form: "order", Field: "total", Error: "boom"}))
	require.NoError(t, p.Close())

	out := buf.String()
	assert.Contains(t, out, `msg="Calculated field changed."`)
	assert.Contains(t, out, "field=total value=42")
	assert.Contains(t, out, "error=boom")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("error=")))
}

func TestLogPublisher_UsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, NewLog(nil).Publish(ctx, Update{Field: "sum", Value: "1"}))
	assert.Contains(t, buf.String(), `"field":"sum"`)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), Update{Field: "a"}))
	got := r.Updates()
	got[0].Field = "mutated"

	assert.Equal(t, []Update{{Field: "a"}}, r.Updates())
	assert.False(t, r.Closed())
	require.NoError(t, r.Close())
	assert.True(t, r.Closed())
}

func TestNewSocketIO_RejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"::not a url", "/socket.io/", "localhost"} {
		_, err := NewSocketIO(context.Background(), raw, "", "")
		assert.Error(t, err, raw)
	}
}

func TestNewSocketIO_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSocketIO(ctx, "http://127.0.0.1:1", "/", "")
	require.Error(t, err)
}

func TestWithInsecureSkipVerify(t *testing.T) {
	opts := socket.DefaultOptions()
	require.Nil(t, opts.GetRawTLSClientConfig())

	WithInsecureSkipVerify()(opts)
	require.NotNil(t, opts.GetRawTLSClientConfig())
	assert.True(t, opts.GetRawTLSClientConfig().InsecureSkipVerify)
}
