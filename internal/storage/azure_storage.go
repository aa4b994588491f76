package storage

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureStore uploads screenshots as block blobs
type AzureStore struct {
	client     *azblob.Client
	serviceURL string
	container  string
}

// NewAzureStore authenticates with a shared key. The container must already exist.
func NewAzureStore(accountName, accountKey, container string) (ScreenshotStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &AzureStore{client: client, serviceURL: serviceURL, container: container}, nil
}

func (s *AzureStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if _, err := s.client.UploadBuffer(ctx, s.container, name, data, nil); err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return s.blobURL(name), nil
}

func (s *AzureStore) blobURL(name string) string {
	return s.serviceURL + "/" + url.PathEscape(s.container) + "/" + url.PathEscape(name)
}

func (s *AzureStore) GetStoreName() string {
	return "azure"
}
