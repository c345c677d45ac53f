package mailer

import (
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// BuildMailtoUrl constructs the standard mailto URI for the fallback path:
// comma-joined recipients, percent-encoded subject and plaintext body.
func BuildMailtoUrl(recipients []string, subject, body string) string {
	return "mailto:" + strings.Join(recipients, ",") +
		"?subject=" + escapeMailtoComponent(subject) +
		"&body=" + escapeMailtoComponent(body)
}

// escapeMailtoComponent percent-encodes for a mailto query. QueryEscape's
// plus-for-space convention confuses mail clients, so spaces become %20.
func escapeMailtoComponent(s string) string {
	return strings.Replace(url.QueryEscape(s), "+", "%20", -1)
}

// execCommand is swapped out in tests.
var execCommand = exec.Command

// OpenMailClient hands the mailto URI to the OS's registered mail handler.
func OpenMailClient(mailtoUrl string) error {
	switch runtime.GOOS {
	case "darwin":
		return execCommand("open", mailtoUrl).Start()
	case "windows":
		return execCommand("rundll32", "url.dll,FileProtocolHandler", mailtoUrl).Start()
	default:
		return execCommand("xdg-open", mailtoUrl).Start()
	}
}
