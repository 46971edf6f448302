package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailNotifier delivers invitation notifications via Amazon SES.
type EmailNotifier struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

var _ Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates an SES-backed notifier. With no from
// address configured it comes up disabled and skips every send.
func NewEmailNotifier(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailNotifier, error) {
	if fromEmail == "" {
		log.Println("Email notifications disabled: SES_FROM_EMAIL not configured")
		return &EmailNotifier{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email notifications enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailNotifier{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// InvitationCreated emails the invited user
func (n *EmailNotifier) InvitationCreated(ctx context.Context, toEmail, tripName, message string) error {
	subject := fmt.Sprintf("You've been invited to %s", tripName)

	note := ""
	if message != "" {
		note = fmt.Sprintf("\n\nMessage from the organizer:\n%s", message)
	}
	textBody := fmt.Sprintf(`Hi,

You've been invited to join the trip %q and share its expenses.%s

Open your invitations to accept or decline:
%s/invitations

The invitation expires in 7 days.
`, tripName, note, n.appBaseURL)

	htmlNote := ""
	if message != "" {
		htmlNote = fmt.Sprintf("<p>Message from the organizer:</p><blockquote>%s</blockquote>", message)
	}
	htmlBody := fmt.Sprintf(`<p>Hi,</p>
<p>You've been invited to join the trip <strong>%s</strong> and share its expenses.</p>
%s
<p><a href="%s/invitations">Open your invitations</a> to accept or decline.</p>
<p>The invitation expires in 7 days.</p>
`, tripName, htmlNote, n.appBaseURL)

	return n.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// InvitationAccepted emails an existing member that someone joined
func (n *EmailNotifier) InvitationAccepted(ctx context.Context, toEmail, tripName, memberName string) error {
	subject := fmt.Sprintf("%s joined %s", memberName, tripName)
	textBody := fmt.Sprintf(`Hi,

%s accepted their invitation and is now a member of %q.
`, memberName, tripName)
	htmlBody := fmt.Sprintf(`<p>Hi,</p>
<p><strong>%s</strong> accepted their invitation and is now a member of <strong>%s</strong>.</p>
`, memberName, tripName)

	return n.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// InvitationRejected emails the inviter
func (n *EmailNotifier) InvitationRejected(ctx context.Context, toEmail, tripName string) error {
	subject := fmt.Sprintf("Invitation to %s was declined", tripName)
	textBody := fmt.Sprintf(`Hi,

Your invitation to the trip %q was declined.
`, tripName)
	htmlBody := fmt.Sprintf(`<p>Hi,</p>
<p>Your invitation to the trip <strong>%s</strong> was declined.</p>
`, tripName)

	return n.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (n *EmailNotifier) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !n.enabled {
		log.Printf("Skipping email send (notifier disabled): %s to %s", subject, toEmail)
		return nil
	}

	fromAddress := n.fromEmail
	if n.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
