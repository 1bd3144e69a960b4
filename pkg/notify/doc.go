// Package notify delivers batch reports to operators, either through the
// structured log or an SMTP relay.
package notify
