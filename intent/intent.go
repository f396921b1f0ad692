// Package intent maps free text received by SMS to one of a fixed set of intents.
package intent

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Kind int

const (
	Unrecognized Kind = iota
	Help
	Unsubscribe
	Save
	No
	Yes
	ZipCode
	EmailAddress
	AdvertiserIntent
	EmailWord
	// Discard is produced for text that looks like an email address but is not
	// one. Such messages get no reply at all.
	Discard
)

var kindNames = map[Kind]string{
	Unrecognized:     "unrecognized",
	Help:             "help",
	Unsubscribe:      "unsubscribe",
	Save:             "save",
	No:               "no",
	Yes:              "yes",
	ZipCode:          "zip_code",
	EmailAddress:     "email_address",
	AdvertiserIntent: "advertiser",
	EmailWord:        "email_word",
	Discard:          "discard",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Intent is the classification result. Zip and Email are set only for the
// ZipCode and EmailAddress kinds.
type Intent struct {
	Kind  Kind
	Zip   string
	Email string
}

var (
	helpRx    = regexp.MustCompile(`^(help|hlp|halp|hepl)\b`)
	leadingRx = regexp.MustCompile(`^[^a-z0-9]+`)
	wordRx    = regexp.MustCompile(`^[a-z]+`)

	unsubscribeWords = []struct {
		word   string
		minLen int
	}{
		{"stopall", 3},
		{"unsubscribe", 5},
		{"cancel", 4},
		{"quit", 4},
		{"end", 3},
	}

	saveWords       = map[string]bool{"save": true, "sav": true, "ave": true}
	noWords         = map[string]bool{"n": true, "no": true, "nope": true}
	advertiserWords = map[string]bool{"ad": true, "advert": true, "advertise": true, "advertiser": true}
	emailWords      = map[string]bool{"email": true, "coupon": true}

	validate = validator.New()
)

// Normalize lower-cases and trims text and strips the reply prefix some
// handsets add when answering a message.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if strings.HasPrefix(text, "re:") {
		text = strings.TrimPrefix(text, "re:")
		text = strings.TrimPrefix(strings.TrimSpace(text), "|")
		text = strings.TrimSpace(text)
	}
	return text
}

// Classify returns the intent of text. Rules are evaluated in priority order
// and the first match wins.
func Classify(text string) Intent {
	msg := Normalize(text)

	switch {
	case isHelp(msg):
		return Intent{Kind: Help}
	case isUnsubscribe(msg):
		return Intent{Kind: Unsubscribe}
	case saveWords[msg]:
		return Intent{Kind: Save}
	case noWords[msg] || strings.HasPrefix(msg, "no "):
		return Intent{Kind: No}
	case msg == "y" || strings.HasPrefix(msg, "yes"):
		return Intent{Kind: Yes}
	case len(msg) >= 5 && isDigits(msg[:5]):
		return Intent{Kind: ZipCode, Zip: msg[:5]}
	case strings.Contains(msg, "@"):
		email := extractEmail(msg)
		if !IsEmail(email) {
			return Intent{Kind: Discard}
		}
		return Intent{Kind: EmailAddress, Email: email}
	case advertiserWords[msg]:
		return Intent{Kind: AdvertiserIntent}
	case emailWords[msg]:
		return Intent{Kind: EmailWord}
	}

	return Intent{Kind: Unrecognized}
}

// IsEmail checks address syntax.
func IsEmail(address string) bool {
	if address == "" {
		return false
	}
	return validate.Var(address, "required,email") == nil
}

func isHelp(msg string) bool {
	return helpRx.MatchString(msg)
}

// isUnsubscribe accepts the opt-out keywords and the truncated forms carriers
// produce, ignoring punctuation in front of the word.
func isUnsubscribe(msg string) bool {
	word := wordRx.FindString(leadingRx.ReplaceAllString(msg, ""))
	if word == "" {
		return false
	}
	if strings.HasPrefix(word, "stop") {
		return true
	}
	for _, w := range unsubscribeWords {
		if len(word) >= w.minLen && strings.HasPrefix(w.word, word) {
			return true
		}
	}
	return false
}

func extractEmail(msg string) string {
	for _, token := range strings.Fields(msg) {
		if strings.Contains(token, "@") {
			return strings.Trim(token, `<>"'(),;:!?.`)
		}
	}
	return ""
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
