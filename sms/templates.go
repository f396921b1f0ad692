package sms

import (
	"fmt"
	"io"

	"github.com/valyala/fasttemplate"
)

// Template identifies a canned reply.
type Template string

const (
	Help                Template = "help"
	OptOutSuccess       Template = "opt_out_success"
	RequestZip          Template = "request_zip"
	RequestDoubleOptIn  Template = "request_double_opt_in"
	OptInSuccess        Template = "opt_in_success"
	RequestEmailAddress Template = "request_email_address"
	ConfirmByEmail      Template = "confirm_by_email"
	EmailSent           Template = "email_sent"
	PhoneVerified       Template = "phone_verified"
)

var defaultTemplates = map[Template]string{
	Help:                "{{brand}} Alerts: Reply with your 5 digit zip code for local coupons. Up to 4 msgs/month. Msg&data rates may apply. Reply STOP to cancel.",
	OptOutSuccess:       "{{brand}}: You are unsubscribed and will receive no further messages. Reply HELP for help.",
	RequestZip:          "{{brand}}: Reply with your 5 digit zip code to get coupons from businesses near you. Reply STOP to cancel.",
	RequestDoubleOptIn:  "{{brand}}: Reply YES to get up to 4 coupon alerts/month. Msg&data rates may apply. Reply STOP to cancel.",
	OptInSuccess:        "{{brand}}: You’re subscribed to coupon alerts for {{zip}}. Reply STOP to cancel, HELP for help.",
	RequestEmailAddress: "{{brand}}: Reply with your email address to get our coupons by email too.",
	ConfirmByEmail:      "{{brand}}: That email address belongs to another phone. Check your inbox to confirm this number.",
	EmailSent:           "{{brand}}: We sent a welcome email to {{email}}.",
	PhoneVerified:       "{{brand}}: Your mobile number is verified.",
}

// Reply is a request to send one templated message back to the phone.
type Reply struct {
	Template Template
	Context  map[string]string
	//marks replies confirming an opt-out in the response ledger
	OptOut bool
}

type Templates struct {
	compiled map[Template]*fasttemplate.Template
	brand    string
}

func NewTemplates(brand string) (*Templates, error) {
	t := &Templates{compiled: make(map[Template]*fasttemplate.Template, len(defaultTemplates)), brand: brand}
	for id, text := range defaultTemplates {
		compiled, err := fasttemplate.NewTemplate(text, "{{", "}}")
		if err != nil {
			return nil, fmt.Errorf("compile template %s: %w", id, err)
		}
		t.compiled[id] = compiled
	}

	return t, nil
}

// Render fills the template with ctx. Unknown placeholders render empty.
func (t *Templates) Render(id Template, ctx map[string]string) (string, error) {
	compiled, ok := t.compiled[id]
	if !ok {
		return "", fmt.Errorf("unknown template %q", id)
	}

	values := map[string]interface{}{"brand": t.brand}
	for k, v := range ctx {
		values[k] = v
	}

	return compiled.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		v, _ := values[tag].(string)
		return w.Write([]byte(v))
	}), nil
}
