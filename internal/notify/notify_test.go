package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewaySMSSender(t *testing.T) {
	t.Run("rejects invalid phone before contacting gateway", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		sender := NewGatewaySMSSender(srv.URL, "key")
		result := sender.Send(context.Background(), "not-a-number", "hello")

		assert.False(t, result.Success)
		assert.False(t, called, "gateway should not be contacted for an invalid number")
	})

	t.Run("sends form-encoded message", func(t *testing.T) {
		var gotNumbers, gotMessage string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotNumbers = r.FormValue("numbers")
			gotMessage = r.FormValue("message")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender := NewGatewaySMSSender(srv.URL, "key")
		result := sender.Send(context.Background(), "+14155550123", "exit recorded")

		assert.True(t, result.Success)
		assert.Equal(t, "+14155550123", gotNumbers)
		assert.Equal(t, "exit recorded", gotMessage)
	})

	t.Run("reports gateway rejection as failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		sender := NewGatewaySMSSender(srv.URL, "key")
		result := sender.Send(context.Background(), "+14155550123", "hello")

		assert.False(t, result.Success)
	})

	t.Run("reports unreachable gateway as failure", func(t *testing.T) {
		sender := NewGatewaySMSSender("http://127.0.0.1:1", "key")
		result := sender.Send(context.Background(), "+14155550123", "hello")

		assert.False(t, result.Success)
	})
}

func TestGatewayPushSender(t *testing.T) {
	t.Run("posts JSON payload with auth header", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender := NewGatewayPushSender(srv.URL, "secret")
		ok := sender.Send(context.Background(), "person-1", "Gate pass", "Exit recorded", map[string]string{"direction": "exit"})

		assert.True(t, ok)
		assert.Equal(t, "Bearer secret", gotAuth)
	})

	t.Run("reports non-2xx as failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		sender := NewGatewayPushSender(srv.URL, "")
		assert.False(t, sender.Send(context.Background(), "person-1", "t", "b", nil))
	})
}

func TestNopSenders(t *testing.T) {
	t.Run("nop push reports not notified", func(t *testing.T) {
		assert.False(t, NopPushSender{}.Send(context.Background(), "p", "t", "b", nil))
	})

	t.Run("nop sms reports not sent", func(t *testing.T) {
		result := NopSMSSender{}.Send(context.Background(), "+14155550123", "m")
		assert.False(t, result.Success)
	})
}
