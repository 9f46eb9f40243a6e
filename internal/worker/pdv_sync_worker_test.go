package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeSyncBackoffDobraPorTentativa(t *testing.T) {
	assert.Equal(t, 30*time.Second, computeSyncBackoff(1))
	assert.Equal(t, 60*time.Second, computeSyncBackoff(2))
	assert.Equal(t, 120*time.Second, computeSyncBackoff(3))
}
