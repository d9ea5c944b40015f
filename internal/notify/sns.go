package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNS subjects are limited to 100 characters.
const maxSubjectLen = 100

// SNSPublisher is the part of *sns.Client used here.
type SNSPublisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS publishes alerts to one topic.
type SNS struct {
	Client   SNSPublisher
	TopicARN string
}

func NewSNS(client SNSPublisher, topicARN string) *SNS {
	return &SNS{Client: client, TopicARN: topicARN}
}

func (s *SNS) Send(ctx context.Context, title, text string) error {
	if s == nil || s.TopicARN == "" {
		return errors.New("sns: no topic configured")
	}
	in := &sns.PublishInput{
		TopicArn: aws.String(s.TopicARN),
		Message:  aws.String(text),
	}
	if subject := subjectLine(title); subject != "" {
		in.Subject = aws.String(subject)
	}
	if _, err := s.Client.Publish(ctx, in); err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// subjectLine makes title acceptable as an SNS subject: a single line of
// printable characters, at most 100 long.
func subjectLine(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		if r < 0x20 {
			continue
		}
		out = append(out, r)
		if len(out) == maxSubjectLen {
			break
		}
	}
	return string(out)
}
