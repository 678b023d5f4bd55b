package ollama

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// TestClient_NoGoroutineLeak creates and closes many clients concurrently.
func TestClient_NoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	var wg sync.WaitGroup
	n := 50
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := NewClient(Config{BaseURL: "http://localhost:11434", Timeout: time.Second}, &http.Client{})
			if err != nil {
				t.Errorf("new client: %v", err)
				return
			}
			if err := c.Close(); err != nil {
				t.Errorf("close: %v", err)
			}
		}()
	}
	wg.Wait()
}
