package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"gopkg.in/gomail.v2"

	"github.com/hvcntt/thesishub_backend/config"
	"github.com/hvcntt/thesishub_backend/models"
)

// SMTPMailer sends announcement emails to resolved recipients.
type SMTPMailer struct{}

// SendAnnouncement emails the notification to each recipient. One dialer,
// one message per recipient; individual failures are logged and skipped.
func (SMTPMailer) SendAnnouncement(users []models.User, title, message string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	if smtpHost == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}

	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)

	for _, user := range users {
		if user.Email == "" {
			continue
		}

		m := gomail.NewMessage()
		m.SetHeader("From", smtpUser)
		m.SetHeader("To", user.Email)
		m.SetHeader("Subject", title)
		m.SetBody("text/plain", fmt.Sprintf("Dear %s,\n\n%s\n\nBest regards,\nThesisHub", user.FullName, message))

		if err := d.DialAndSend(m); err != nil {
			log.Printf("Failed to send email to %s: %v", user.Email, err)
		}
	}

	return nil
}

// FCMPusher delivers notifications through Firebase Cloud Messaging.
type FCMPusher struct{}

// Push sends one FCM message to the user's registered device token.
func (FCMPusher) Push(user models.User, title, message string, data map[string]string) error {
	if user.FCMToken == "" {
		return fmt.Errorf("user has no FCM token")
	}

	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["timestamp"]; !ok {
		data["timestamp"] = time.Now().Format(time.RFC3339)
	}

	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "thesishub_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  message,
					},
					Sound: "default",
					Badge: func() *int { v := 1; return &v }(),
				},
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	log.Printf("FCM notification sent to user %s: %s", user.ID.Hex(), response)
	return nil
}
