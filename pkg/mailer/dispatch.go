package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/crm-accounts/pkg/mailer/templates"
)

// ErrMalformedJob marks a job that can never be delivered and must not be requeued.
var ErrMalformedJob = errors.New("malformed email job")

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Dispatch decodes a queued EmailJob, renders its template if any and sends it.
// Errors wrapping ErrMalformedJob are permanent; any other error is a send
// failure worth retrying.
func Dispatch(ctx context.Context, s Sender, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrMalformedJob)
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		var err error
		subject, text, html, err = templates.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", ErrMalformedJob, job.Template, err)
		}
	}
	if subject == "" {
		return fmt.Errorf("%w: empty subject", ErrMalformedJob)
	}
	return s.Send(ctx, job.To, subject, text, html)
}
