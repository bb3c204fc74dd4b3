package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bp848/mqdriven-sub001/internal/middleware"
)

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	ctx := middleware.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	id, sentAt, err := NewLogMailer().Send(ctx, []string{"a@example.com", "b@example.com"}, "[承認] 経費精算", "body")
	require.NoError(t, err)

	assert.Contains(t, id, "log-")
	assert.False(t, sentAt.IsZero())
	assert.Contains(t, buf.String(), `"to":"a@example.com,b@example.com"`)
}
