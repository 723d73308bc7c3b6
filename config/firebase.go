package config

import (
	"context"
	"encoding/base64"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

var FirebaseApp *firebase.App

// InitFirebase initializes the Firebase Admin SDK used for FCM push.
// Push is optional: when no credentials are configured the app keeps
// running with FirebaseApp nil and the dispatcher skips FCM delivery.
func InitFirebase() {
	ctx := context.Background()

	if base64Creds := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); base64Creds != "" {
		decoded, err := base64.StdEncoding.DecodeString(base64Creds)
		if err != nil {
			log.Printf("Warning: could not decode FIREBASE_CREDENTIALS_BASE64: %v", err)
			return
		}

		app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(decoded))
		if err != nil {
			log.Printf("Warning: error initializing firebase app: %v", err)
			return
		}
		FirebaseApp = app
		log.Println("Firebase initialized from base64 credentials")
		return
	}

	credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credFile == "" {
		log.Println("Firebase credentials not configured, FCM push disabled")
		return
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credFile))
	if err != nil {
		log.Printf("Warning: error initializing firebase app: %v", err)
		return
	}

	FirebaseApp = app
	log.Println("Firebase initialized")
}
