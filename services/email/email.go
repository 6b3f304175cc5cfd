package emailsvc

import (
	"log"

	"github.com/trezcool/masomo-attendance/core"
)

// NewService prints emails in debug mode or without a Sendgrid key, and sends them through Sendgrid otherwise.
func NewService(conf *core.Config, logger core.Logger, out *log.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return NewConsoleService(conf, out)
	}
	return NewSendgridService(conf, logger)
}
