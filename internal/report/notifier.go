package report

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"bluemedix-workflow/internal/workflow"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Notifier announces failed runs over SNS and/or SES. Runs without failures
// are not announced.
type Notifier struct {
	publisher SNSPublisher
	topicARN  string
	mailer    EmailSender
	from      string
	to        []string
}

type NotifierOption func(*Notifier)

func WithSNS(p SNSPublisher, topicARN string) NotifierOption {
	return func(n *Notifier) {
		n.publisher = p
		n.topicARN = topicARN
	}
}

func WithSES(m EmailSender, from string, to []string) NotifierOption {
	return func(n *Notifier) {
		n.mailer = m
		n.from = from
		n.to = to
	}
}

func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Name() string { return "notifier" }

func (n *Notifier) Write(ctx context.Context, rep *Report) error {
	if rep.Summary.Failed == 0 {
		return nil
	}

	subject := Subject(rep)
	body := FailureDigest(rep)
	var errs []error

	if n.publisher != nil {
		_, err := n.publisher.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(n.topicARN),
			Subject:  aws.String(truncate(subject, 100)),
			Message:  aws.String(body),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("sns publish failed: %w", err))
		}
	}

	if n.mailer != nil {
		_, err := n.mailer.SendEmail(ctx, &ses.SendEmailInput{
			Source:      aws.String(n.from),
			Destination: &sestypes.Destination{ToAddresses: n.to},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Text: &sestypes.Content{Data: aws.String(body)}},
			},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("ses send failed: %w", err))
		}
	}

	return stderrors.Join(errs...)
}

func Subject(rep *Report) string {
	return fmt.Sprintf("BlueMedix workflow %s: %d of %d steps failed", rep.RunID, rep.Summary.Failed, rep.Summary.Total)
}

// FailureDigest lists the summary and every failed step.
func FailureDigest(rep *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s against %s\n", rep.RunID, rep.BaseURL)
	fmt.Fprintf(&b, "total=%d passed=%d failed=%d skipped=%d\n\n",
		rep.Summary.Total, rep.Summary.Passed, rep.Summary.Failed, rep.Summary.Skipped)
	for _, rec := range rep.Results {
		if rec.Status != workflow.StatusFailed {
			continue
		}
		fmt.Fprintf(&b, "- %s [%s]", rec.Name, rec.ErrorCode)
		if rec.HTTPStatus != 0 {
			fmt.Fprintf(&b, " status %d", rec.HTTPStatus)
		}
		fmt.Fprintf(&b, ": %s\n", rec.Message)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
