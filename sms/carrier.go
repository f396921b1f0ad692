package sms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxBodySize = 1024

var (
	// ErrUpstream is returned when the carrier API answers with a non-200
	// status or an error code instead of a message id.
	ErrUpstream = errors.New("carrier upstream failure")
	// ErrMissingCredentials means the destination carrier cannot be used for sending.
	ErrMissingCredentials = errors.New("missing carrier credentials")
	// ErrLookupDisabled is returned by Lookup when no lookup API is configured.
	ErrLookupDisabled = errors.New("carrier lookup is not configured")
)

// LookupError is a carrier lookup failure with a message fit to show on a form.
type LookupError struct {
	Code    string
	Message string
}

func (e *LookupError) Error() string {
	return e.Message
}

var lookupErrors = map[string]string{
	"-1":      "Please enter a valid 10 digit mobile number.",
	"-2":      "This number does not appear to be a mobile phone.",
	"-3":      "Sorry, your mobile carrier is not supported.",
	"-4":      "We could not verify this number right now. Please try again later.",
	"UNKNOWN": "We could not determine the mobile carrier for this number.",
	"FAILURE": "We could not verify this number right now. Please try again later.",
}

type Credentials struct {
	Username string
	Password string
}

type Client interface {
	//Send submits the message and returns the id the carrier assigned to it
	Send(ctx context.Context, creds Credentials, from, to, text string) (string, error)
	//Lookup returns the carrier code of a phone number
	Lookup(ctx context.Context, number string) (string, error)
}

type client struct {
	sendURL    string
	lookupURL  string
	lookupUser string
	lookupPwd  string
	httpClient *http.Client
}

func NewClient(sendURL, lookupURL, lookupUser, lookupPwd string, timeout time.Duration) Client {
	return &client{
		sendURL:    sendURL,
		lookupURL:  lookupURL,
		lookupUser: lookupUser,
		lookupPwd:  lookupPwd,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *client) Send(ctx context.Context, creds Credentials, from, to, text string) (string, error) {
	params := url.Values{}
	params.Set("user", creds.Username)
	params.Set("pass", creds.Password)
	params.Set("smsto", to)
	params.Set("smsfrom", from)
	params.Set("smsmsg", text)
	params.Set("report", "7")

	body, err := c.get(ctx, c.sendURL, params)
	if err != nil {
		return "", err
	}

	if isErrorBody(body) {
		return "", fmt.Errorf("%w: send rejected with %q", ErrUpstream, body)
	}

	return body, nil
}

func (c *client) Lookup(ctx context.Context, number string) (string, error) {
	if c.lookupURL == "" {
		return "", ErrLookupDisabled
	}

	params := url.Values{}
	params.Set("user", c.lookupUser)
	params.Set("pass", c.lookupPwd)
	params.Set("number", number)

	body, err := c.get(ctx, c.lookupURL, params)
	if err != nil {
		return "", err
	}

	if msg, ok := lookupErrors[strings.ToUpper(body)]; ok {
		return "", &LookupError{Code: body, Message: msg}
	}
	if body == "" {
		return "", &LookupError{Code: "UNKNOWN", Message: lookupErrors["UNKNOWN"]}
	}

	return body, nil
}

func (c *client) get(ctx context.Context, endpoint string, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %s", ErrUpstream, resp.Status)
	}

	return strings.TrimSpace(string(raw)), nil
}

func isErrorBody(body string) bool {
	upper := strings.ToUpper(body)
	return body == "" || strings.HasPrefix(body, "-") || strings.HasPrefix(upper, "ERR") || upper == "FAILURE"
}
