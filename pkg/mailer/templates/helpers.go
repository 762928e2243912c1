package templates

import (
	"time"
)

// Branding is the sender identity shown in every email.
type Branding struct {
	CompanyName string
	AppName     string
	LogoURL     string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithActionURL(url string) Option { return func(d *EmailData) { d.ActionURL = url } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
		d.ExpiresInText = dur.String()
	}
}

// NewBaseEmailData fills the common fields from b, then applies opts.
func NewBaseEmailData(b Branding, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName: b.CompanyName,
		AppName:     b.AppName,
		LogoURL:     b.LogoURL,
		SupportURL:  b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewActivationData builds the data for activate_user or activate_shop.
func NewActivationData(b Branding, typ, name, email, url string, ttl time.Duration) map[string]any {
	return ToMap(NewBaseEmailData(b, typ, name, email, WithActionURL(url), WithExpiresIn(ttl)))
}

func NewResetPasswordData(b Branding, name, email, url string, ttl time.Duration) map[string]any {
	return ToMap(NewBaseEmailData(b, ResetPassword, name, email, WithActionURL(url), WithExpiresIn(ttl)))
}
