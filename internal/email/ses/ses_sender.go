package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"

	"shelfscan/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	reviewerTo  string
	frontendURL string
}

// NewSESSender creates a new SES-backed AlertSender.
func NewSESSender(region, fromAddress, fromName, reviewerTo, frontendURL string) (port.AlertSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		reviewerTo:  reviewerTo,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendPriceReviewAlert(ctx context.Context, scanID uuid.UUID, discrepancyCount int) error {
	if s.reviewerTo == "" {
		return nil
	}

	reviewURL := fmt.Sprintf("%s/scans/%s", s.frontendURL, scanID)

	subject := fmt.Sprintf("Invoice scan needs a price review (%d items)", discrepancyCount)
	htmlBody := buildReviewAlertHTML(discrepancyCount, reviewURL)
	textBody := fmt.Sprintf(
		"A scanned invoice has %d items whose prices differ from your catalog.\n\nReview and decide here:\n%s\n\nShelfscan",
		discrepancyCount, reviewURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.reviewerTo},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReviewAlertHTML(discrepancyCount int, reviewURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Price review needed</h2>
  <p>A scanned invoice has %d items whose prices differ from your catalog.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review Prices</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Shelfscan - Invoice Scanning</p>
</body>
</html>`, discrepancyCount, reviewURL, reviewURL)
}
