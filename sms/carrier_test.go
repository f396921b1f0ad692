package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Send(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte("1203837180\n"))
	}))
	defer srv.Close()
	clnt := NewClient(srv.URL, "", "", "", time.Second)

	id, err := clnt.Send(context.Background(), Credentials{Username: "u", Password: "p"}, "71010", "8455551000", "Hi & bye")

	require.NoError(t, err)
	require.Equal(t, "1203837180", id)
	require.Equal(t, []string{"u"}, query["user"])
	require.Equal(t, []string{"p"}, query["pass"])
	require.Equal(t, []string{"8455551000"}, query["smsto"])
	require.Equal(t, []string{"71010"}, query["smsfrom"])
	require.Equal(t, []string{"Hi & bye"}, query["smsmsg"])
	require.Equal(t, []string{"7"}, query["report"])
}

func TestClient_SendFailures(t *testing.T) {
	status, body := http.StatusOK, "-5"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()
	clnt := NewClient(srv.URL, "", "", "", time.Second)

	_, err := clnt.Send(context.Background(), Credentials{}, "1", "2", "x")
	require.True(t, errors.Is(err, ErrUpstream))

	status, body = http.StatusInternalServerError, "123"
	_, err = clnt.Send(context.Background(), Credentials{}, "1", "2", "x")
	require.True(t, errors.Is(err, ErrUpstream))

	status, body = http.StatusOK, "ERR: bad credentials"
	_, err = clnt.Send(context.Background(), Credentials{}, "1", "2", "x")
	require.True(t, errors.Is(err, ErrUpstream))
}

func TestClient_SendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	clnt := NewClient(srv.URL, "", "", "", 50*time.Millisecond)

	_, err := clnt.Send(context.Background(), Credentials{}, "1", "2", "x")

	require.True(t, errors.Is(err, ErrUpstream))
}

func TestClient_Lookup(t *testing.T) {
	body := "VZW"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "8455551000", r.URL.Query().Get("number"))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()
	clnt := NewClient("", srv.URL, "u", "p", time.Second)

	code, err := clnt.Lookup(context.Background(), "8455551000")
	require.NoError(t, err)
	require.Equal(t, "VZW", code)

	for _, errCode := range []string{"-1", "-2", "-3", "-4", "UNKNOWN", "FAILURE"} {
		body = errCode
		_, err = clnt.Lookup(context.Background(), "8455551000")
		var lookupErr *LookupError
		require.True(t, errors.As(err, &lookupErr), errCode)
		require.Equal(t, errCode, lookupErr.Code)
		require.NotEmpty(t, lookupErr.Error())
	}
}

func TestClient_LookupDisabled(t *testing.T) {
	_, err := NewClient("", "", "", "", time.Second).Lookup(context.Background(), "8455551000")

	require.Equal(t, ErrLookupDisabled, err)
}
