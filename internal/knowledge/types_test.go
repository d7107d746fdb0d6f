package knowledge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koopa0/secondbrain/internal/knowledge"
)

func TestParseSourceType(t *testing.T) {
	for _, valid := range []string{"text", "pdf", "audio", "image", "web"} {
		st, err := knowledge.ParseSourceType(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(st))
	}

	for _, invalid := range []string{"", "TEXT", "video", "url"} {
		_, err := knowledge.ParseSourceType(invalid)
		assert.Error(t, err, "source type %q must be rejected", invalid)
	}
}
