// file: internal/calibre/smtp.go
// version: 1.0.0
// guid: 83a4c51b-be18-4f17-8833-27e754437e25

package calibre

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// SendRequest describes one outgoing email for calibre-smtp.
type SendRequest struct {
	Recipient      string
	Subject        string
	Body           string
	AttachmentPath string
	Server         string
	Port           int
	Username       string
	Password       string
	Encryption     string // "tls", "ssl" or "none"; empty defaults to "tls"
	Sender         string
	ReplyTo        string
}

// SendResult is the business outcome of an email send. A rejected or failed
// send is NOT an error: calibre-smtp reports it through a non-zero exit, and
// that comes back here as Success=false with the tool's diagnostics.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendMail sends an email through `calibre-smtp`. Spawn-level failures
// (missing binary, timeout) are still errors; a completed run is always a
// SendResult.
func (t *Tools) SendMail(req SendRequest) (SendResult, error) {
	if req.Recipient == "" {
		return SendResult{}, inputErrorf("recipient email must be provided")
	}
	if req.Server == "" {
		return SendResult{}, inputErrorf("smtp server must be provided")
	}
	if req.Port <= 0 {
		return SendResult{}, inputErrorf("smtp port must be a positive integer")
	}
	encryption := req.Encryption
	if encryption == "" {
		encryption = "tls"
	}
	switch encryption {
	case "tls", "ssl", "none":
	default:
		return SendResult{}, inputErrorf("smtp encryption must be 'tls', 'ssl', or 'none'")
	}

	argv := []string{BinCalibreSMTP}
	if req.AttachmentPath != "" {
		argv = append(argv, "--attachment", req.AttachmentPath)
	}
	argv = append(argv,
		"--encryption-method", encryption,
		"--port", strconv.Itoa(req.Port),
		"--relay", req.Server,
		"--subject", req.Subject,
	)
	if req.Username != "" {
		argv = append(argv, "--username", req.Username)
	}
	if req.Password != "" {
		argv = append(argv, "--password", req.Password)
	}
	if req.Sender != "" {
		argv = append(argv, "--from-addr", req.Sender)
	}
	if req.ReplyTo != "" {
		argv = append(argv, "--reply-to", req.ReplyTo)
	}
	argv = append(argv, req.Recipient, req.Body)

	res, err := t.runner.Run(argv, t.timeouts.SMTP)
	if err != nil {
		return SendResult{}, err
	}

	if res.ExitCode == 0 {
		log.Printf("[INFO] calibre-smtp reported success sending to %s.", req.Recipient)
		message := res.Stdout
		if message == "" {
			message = "Email sent successfully."
		}
		return SendResult{Success: true, Message: message}, nil
	}

	log.Printf("[ERROR] calibre-smtp failed to send email to %s. Returncode: %d\nStdout: %s\nStderr: %s",
		req.Recipient, res.ExitCode, res.Stdout, res.Stderr)

	var b strings.Builder
	fmt.Fprintf(&b, "Failed to send email. Return code: %d.", res.ExitCode)
	if res.Stdout != "" {
		b.WriteString("\nOutput: " + res.Stdout)
	}
	if res.Stderr != "" {
		b.WriteString("\nError details: " + res.Stderr)
	}
	return SendResult{Success: false, Message: strings.TrimSpace(b.String())}, nil
}
