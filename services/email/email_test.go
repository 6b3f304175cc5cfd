package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"strings"
	"testing"

	"github.com/trezcool/masomo-attendance/core"
)

func testConfig() *core.Config {
	conf := &core.Config{AppName: "Masomo", Debug: true}
	return conf
}

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock(testConfig())

	withAttachment := &core.EmailMessage{
		To:      []mail.Address{{Name: "Head", Address: "head@school.test"}},
		Subject: "Attendance",
		BodyStr: "see attached",
	}
	if err := withAttachment.Attach(strings.NewReader("Admission No,Roll No\n"), "attendance.csv", "text/csv"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	noRecipient := &core.EmailMessage{Subject: "lost", BodyStr: "nobody"}

	svc.SendMessages(withAttachment, noRecipient)

	sent := svc.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("SendMessages() sent %d messages, want 1", len(sent))
	}
	if sent[0].TextContent != "see attached" {
		t.Errorf("SendMessages() text = %q", sent[0].TextContent)
	}
}

func TestConsoleService_format(t *testing.T) {
	var out bytes.Buffer
	svc := NewConsoleService(testConfig(), log.New(&out, "", 0)).(*consoleService)

	msg := core.EmailMessage{
		To:          []mail.Address{{Address: "head@school.test"}},
		Subject:     "Attendance 5 A",
		TextContent: "2 present",
		HTMLContent: "<p>2 present</p>",
	}
	if err := msg.Attach(strings.NewReader("a,b\n"), "attendance-5-A-2024-03-01.csv", "text/csv"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	body, err := svc.format(msg)
	if err != nil {
		t.Fatalf("format() error = %v", err)
	}
	for _, want := range []string{
		"Subject: [Masomo] Attendance 5 A",
		"To: <head@school.test>",
		"multipart/mixed",
		"2 present",
		"<p>2 present</p>",
		"attachment; filename=attendance-5-A-2024-03-01.csv",
		"YSxiCg==", // base64 of the attachment
	} {
		if !strings.Contains(body, want) {
			t.Errorf("format() does not contain %q:\n%s", want, body)
		}
	}
}

func TestSendgridService_prepare(t *testing.T) {
	conf := testConfig()
	svc := NewSendgridService(conf, nil).(*sendgridService)

	msg := core.EmailMessage{
		To:          []mail.Address{{Name: "Head", Address: "head@school.test"}},
		Cc:          []mail.Address{{Address: "deputy@school.test"}},
		Subject:     "Attendance",
		TextContent: "text",
	}
	_ = msg.Attach(strings.NewReader("a,b\n"), "report.csv", "text/csv")

	m := svc.prepare(msg)
	if len(m.Personalizations) != 1 || m.Personalizations[0].Subject != "[Masomo] Attendance" {
		t.Fatalf("prepare() personalizations = %+v", m.Personalizations)
	}
	if p := m.Personalizations[0]; len(p.To) != 1 || p.To[0].Address != "head@school.test" || len(p.CC) != 1 {
		t.Errorf("prepare() recipients = %+v / %+v", p.To, p.CC)
	}
	if len(m.Content) != 1 || m.Content[0].Type != "text/plain" {
		t.Errorf("prepare() content = %+v", m.Content)
	}
	if len(m.Attachments) != 1 || m.Attachments[0].Filename != "report.csv" || m.Attachments[0].Content != "YSxiCg==" {
		t.Errorf("prepare() attachments = %+v", m.Attachments)
	}
}
