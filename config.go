package memberjwt

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Algorithm is the only JWS algorithm the service signs with and accepts.
const Algorithm = "HS256"

const (
	DefaultLifetimeInDays          = 7                  // Token lifetime counted from the last signing
	DefaultRenewThresholdInMinutes = 60                 // Idle time before Renew re-signs a token
	DefaultBaseURL                 = "http://localhost" // Issuer used when neither Issuer nor BaseURL is set
)

// DefaultIncludedMemberFields returns the profile fields copied into the
// payload's member block: output key mapped to principal attribute name.
func DefaultIncludedMemberFields() map[string]string {
	return map[string]string{
		"id":        "ID",
		"email":     "Email",
		"firstName": "FirstName",
		"surname":   "Surname",
	}
}

// Config holds the settings for token issuance and renewal.
//
// Fields:
//   - Secret: HMAC key used to sign and verify every token (required)
//   - LifetimeInDays: Days a token stays valid after it was last signed
//   - RenewThresholdInMinutes: Minimum idle minutes before Renew re-signs a token
//   - Issuer: Value of the iss claim; empty means BaseURL
//   - BaseURL: Canonical URL of the hosting service
//   - IncludedMemberFields: Payload member key mapped to principal attribute
//   - RevealAuthFailureReason: Report "member not found" and "incorrect password"
//     separately instead of a generic "invalid credentials"
//
// A Config is read once when the Service is built and never changes afterwards.
//
// Numeric fields are taken literally. A hand-built Config{Secret: "s"} has a
// LifetimeInDays of 0, which issues tokens that expire the moment they are
// signed, and a RenewThresholdInMinutes of 0, which re-signs on every Renew.
// Start from DefaultConfig or LoadConfig to get the documented defaults. Only
// a nil IncludedMemberFields and an empty issuer fall back to defaults.
type Config struct {
	Secret                  string            `mapstructure:"secret" secret:"true" validate:"required"`
	LifetimeInDays          int               `mapstructure:"lifetime_in_days" default:"7" validate:"gte=0"`
	RenewThresholdInMinutes int               `mapstructure:"renew_threshold_in_minutes" default:"60" validate:"gte=0"`
	Issuer                  string            `mapstructure:"iss"`
	BaseURL                 string            `mapstructure:"base_url" default:"http://localhost"`
	IncludedMemberFields    map[string]string `mapstructure:"included_member_fields"`
	RevealAuthFailureReason bool              `mapstructure:"reveal_auth_failure_reason"`
}

// DefaultConfig returns a Config with the documented defaults and the given secret.
func DefaultConfig(secret string) Config {
	return Config{
		Secret:                  secret,
		LifetimeInDays:          DefaultLifetimeInDays,
		RenewThresholdInMinutes: DefaultRenewThresholdInMinutes,
		BaseURL:                 DefaultBaseURL,
		IncludedMemberFields:    DefaultIncludedMemberFields(),
	}
}

// IssuerOrBaseURL returns the value placed in the iss claim.
func (c Config) IssuerOrBaseURL() string {
	if c.Issuer != "" {
		return c.Issuer
	}
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// String returns a representation of the config with the secret redacted.
func (c Config) String() string {
	v := reflect.ValueOf(c)
	t := v.Type()
	var sb strings.Builder
	sb.WriteString("Config{")
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := fmt.Sprintf("%v", v.Field(i).Interface())
		if field.Tag.Get("secret") == "true" {
			value = "***REDACTED***"
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(field.Name + ": " + value)
	}
	sb.WriteString("}")
	return sb.String()
}

var configValidator = validator.New()

// validateConfig checks the configuration and fills the member field set when
// it is missing. Every failure wraps ErrConfiguration.
func validateConfig(config *Config) error {
	if err := configValidator.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			problems := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				problems = append(problems, describeFieldError(fe))
			}
			sort.Strings(problems)
			return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
		}
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if config.IncludedMemberFields == nil {
		config.IncludedMemberFields = DefaultIncludedMemberFields()
	}
	for key, attribute := range config.IncludedMemberFields {
		if key == "" || attribute == "" {
			return fmt.Errorf("%w: included member fields cannot contain empty names", ErrConfiguration)
		}
	}

	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "Secret" {
			return "secret is required"
		}
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}
