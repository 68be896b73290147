package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gateline/gateline/pkg/apierr"
)

// DebugPrefix marks messages sent while debug mode is on.
const DebugPrefix = "### DEBUG ### "

// SMSConfig describes a Twilio-style messaging API account.
type SMSConfig struct {
	AccountSID     string `yaml:"account_sid" envconfig:"ACCOUNT_SID"`
	Token          string `yaml:"token" envconfig:"TOKEN"`
	From           string `yaml:"from" envconfig:"FROM"`
	APIURL         string `yaml:"api_url" envconfig:"API_URL"`
	DebugRecipient string `yaml:"debug_recipient" envconfig:"DEBUG_RECIPIENT"`
}

// HTTPSMSSender posts messages to a Twilio-compatible REST endpoint.
type HTTPSMSSender struct {
	cfg    SMSConfig
	debug  bool
	client *http.Client
	logger *zap.Logger
}

// NewHTTPSMSSender builds an SMS sender from config.
func NewHTTPSMSSender(cfg SMSConfig, debug bool, logger *zap.Logger) *HTTPSMSSender {
	return &HTTPSMSSender{
		cfg:    cfg,
		debug:  debug,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.Named("sms"),
	}
}

// Send delivers one message. In debug mode the recipient is swapped for the
// debug recipient and the body is prefixed so test traffic is unmistakable.
func (s *HTTPSMSSender) Send(ctx context.Context, recipient, message string) error {
	if s.debug {
		if s.cfg.DebugRecipient != "" {
			recipient = s.cfg.DebugRecipient
		}
		message = DebugPrefix + message
	}

	form := url.Values{}
	form.Set("To", recipient)
	form.Set("From", s.cfg.From)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json",
		strings.TrimSuffix(s.cfg.APIURL, "/"), s.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return apierr.Make(apierr.SMSNotSent, err.Error())
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.Token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("sms delivery failed", zap.Error(err))
		return apierr.Make(apierr.SMSNotSent, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Error("sms api rejected message", zap.Int("status", resp.StatusCode))
		return apierr.Make(apierr.SMSNotSent, fmt.Sprintf("api status %d", resp.StatusCode))
	}
	return nil
}
