package mongo

import (
	"testing"
	"time"
)

func TestTimeouts(t *testing.T) {
	if defaultTimeout <= 0 || defaultTimeout > connectTimeout {
		t.Errorf("repository calls must be bounded and no longer than connect, got %s", defaultTimeout)
	}
	if connectTimeout < time.Second {
		t.Errorf("connect timeout too small: %s", connectTimeout)
	}
}
