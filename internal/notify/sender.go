package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Sender puts an alert on the user's screen.
type Sender interface {
	Available() bool
	Send(title, body string) error
}

type NoopSender struct{}

func (NoopSender) Available() bool { return false }

func (NoopSender) Send(string, string) error { return nil }

// ExecSender shells out to notify-send on Linux and osascript on macOS.
type ExecSender struct{}

func (ExecSender) Available() bool {
	bin := senderBinary()
	if bin == "" {
		return false
	}
	_, err := exec.LookPath(bin)
	return err == nil
}

func (ExecSender) Send(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func senderBinary() string {
	switch runtime.GOOS {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
