package sms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplates_Render(t *testing.T) {
	templates, err := NewTemplates("10Coupons")
	require.NoError(t, err)

	text, err := templates.Render(OptInSuccess, map[string]string{"zip": "12550"})
	require.NoError(t, err)
	require.Contains(t, text, "10Coupons")
	require.Contains(t, text, "12550")

	text, err = templates.Render(EmailSent, nil)
	require.NoError(t, err)
	require.Equal(t, "10Coupons: We sent a welcome email to .", text)

	_, err = templates.Render(Template("nope"), nil)
	require.Error(t, err)
}

func TestTemplates_FitSingleMessage(t *testing.T) {
	templates, err := NewTemplates("10Coupons")
	require.NoError(t, err)

	for id := range defaultTemplates {
		text, err := templates.Render(id, map[string]string{"zip": "12550", "email": "jane@example.com"})
		require.NoError(t, err)
		require.LessOrEqual(t, len(ToASCII(text)), 160, "template %s", id)
	}
}

func TestToASCII(t *testing.T) {
	require.Equal(t, `You're "in" - cafe creme...`, ToASCII("You’re “in” – café crème…"))
	require.Equal(t, "Strasse", ToASCII("Straße"))
	require.Equal(t, "plain text", ToASCII("plain text"))
	require.Equal(t, "smile ?", ToASCII("smile ☺"))
}
