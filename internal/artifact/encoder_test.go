package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	verrors "github.com/verityhq/verity/internal/errors"
)

func TestFFmpegEncoder_MissingBinary(t *testing.T) {
	enc := &FFmpegEncoder{Binary: "definitely-not-a-real-encoder-binary"}
	err := enc.Encode(context.Background(), t.TempDir(), "out.webm")
	assert.ErrorIs(t, err, verrors.ErrEncoderUnavailable)
}

func TestNoopEncoder(t *testing.T) {
	err := NoopEncoder{}.Encode(context.Background(), "frames", "out.webm")
	assert.ErrorIs(t, err, verrors.ErrEncoderUnavailable)
}
