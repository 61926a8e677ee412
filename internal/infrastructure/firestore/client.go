package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"Spatialynk-App/internal/logging"
)

type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient Cloud Run上ではデフォルト認証、ローカルでは認証ファイルがあればそれを使う
func NewFirestoreClient(ctx context.Context, projectID string) (*FirestoreClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_IDが設定されていません")
	}

	var opts []option.ClientOption
	if os.Getenv("K_SERVICE") == "" {
		credentialsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if credentialsFile != "" {
			if _, err := os.Stat(credentialsFile); err != nil {
				logging.Warn().Str("file", credentialsFile).Msg("認証ファイルが見つからないためデフォルト認証を使用")
			} else {
				opts = append(opts, option.WithCredentialsFile(credentialsFile))
			}
		}
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("Firestoreクライアントの初期化に失敗: %w", err)
	}
	logging.Info().Str("project_id", projectID).Msg("Firestoreクライアント初期化完了")

	return &FirestoreClient{client: client}, nil
}

func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}
