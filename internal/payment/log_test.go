package payment

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLog(t *testing.T) {
	t.Run("records entries oldest first", func(t *testing.T) {
		log := NewErrorLog(nil)
		log.Log(NewError(ErrorTypeNetworkError, "first"), nil)
		log.Log(NewError(ErrorTypeAPIError, "second"), map[string]any{"attempt": 1})

		entries := log.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "first", entries[0].Error.Message)
		assert.Equal(t, "second", entries[1].Error.Message)
		assert.Equal(t, 1, entries[1].Context["attempt"])
	})

	t.Run("drops oldest beyond capacity", func(t *testing.T) {
		log := NewErrorLog(nil)
		for i := 0; i < errorLogCapacity+10; i++ {
			log.Log(NewError(ErrorTypeAPIError, fmt.Sprintf("err-%d", i)), nil)
		}

		assert.Equal(t, errorLogCapacity, log.Len())
		entries := log.Entries()
		assert.Equal(t, "err-10", entries[0].Error.Message)
		assert.Equal(t, fmt.Sprintf("err-%d", errorLogCapacity+9), entries[len(entries)-1].Error.Message)
	})

	t.Run("ignores nil errors and nil receivers", func(t *testing.T) {
		log := NewErrorLog(nil)
		log.Log(nil, nil)
		assert.Equal(t, 0, log.Len())

		var missing *ErrorLog
		missing.Log(NewError(ErrorTypeAPIError, "boom"), nil)
	})

	t.Run("safe under concurrent use", func(t *testing.T) {
		log := NewErrorLog(nil)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					log.Log(NewError(ErrorTypeNetworkError, "concurrent"), nil)
					_ = log.Entries()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, errorLogCapacity, log.Len())
	})
}
