package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys_Message(t *testing.T) {
	assert.Equal(t, "rbserror:unitTestQueueName:myMessageId", For(DefaultPrefix, "unitTestQueueName").Message("myMessageId"))
	assert.Equal(t, "custom:orders:42", For("custom", "orders").Message("42"))
}

func TestKeys_For(t *testing.T) {
	q := For(DefaultPrefix, "video")
	assert.Equal(t, "rbserror:video:", q.Base)
	assert.Equal(t, "rbserror:video:m1", q.Message("m1"))
	assert.Equal(t, "rbserror:video:*", q.Pattern())
}

func TestKeys_QueuesDoNotCollide(t *testing.T) {
	a := For(DefaultPrefix, "a").Message("same-id")
	b := For(DefaultPrefix, "b").Message("same-id")
	assert.NotEqual(t, a, b)
}

func TestKeys_PatternEscapesGlob(t *testing.T) {
	q := For(DefaultPrefix, "orders[eu]*")
	assert.Equal(t, `rbserror:orders\[eu\]\*:*`, q.Pattern())
}
