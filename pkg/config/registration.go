package config

// RegistrationConfig controls registration policy: whether matching email
// addresses may self-verify, which role and security level registrations
// start with, and who gets the admin notifications.
type RegistrationConfig struct {
	// AutoApproveEnabled enables self-verification for registrations whose
	// email matches one of the configured suffixes
	AutoApproveEnabled bool `env:"REGISTRATION_AUTO_APPROVE" env-default:"false"`

	// AutoApproveEmailSuffixes is the email-domain suffix allow-list for
	// self-verification (case-insensitive suffix match)
	AutoApproveEmailSuffixes []string `env:"REGISTRATION_AUTO_APPROVE_EMAIL_SUFFIXES" env-separator:","`

	// InitialRole is assigned to auto-approved registrations
	InitialRole string `env:"REGISTRATION_INITIAL_ROLE" env-default:"Member"`

	// InitialSecurityLevel is assigned to auto-approved registrations
	InitialSecurityLevel string `env:"REGISTRATION_INITIAL_SECURITY_LEVEL" env-default:"confidential"`

	// DefaultRole is assigned to registrations awaiting admin review
	DefaultRole string `env:"REGISTRATION_DEFAULT_ROLE" env-default:"Browser"`

	// DefaultSecurityLevel is assigned to registrations awaiting admin review
	DefaultSecurityLevel string `env:"REGISTRATION_DEFAULT_SECURITY_LEVEL" env-default:"public"`

	// AdminEmails receive the admin copies of registration notices
	AdminEmails []string `env:"REGISTRATION_ADMIN_EMAILS" env-separator:","`
}
