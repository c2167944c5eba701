// Package storage provides blob storage operations with an Azure Blob Storage implementation.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/docsort/pkg/lifecycle"
)

// MaxListCap bounds a single List call.
const MaxListCap = 500

// Object describes a stored blob.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
	// Put writes data to the blob at key, replacing any existing blob.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the blob contents at key. Returns ErrNotFound if the blob does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns up to the configured maximum objects whose keys start with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Delete removes the blob at key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
}

type azure struct {
	client    *azblob.Client
	container string
	maxList   int32
	logger    *slog.Logger
}

// New creates a storage system from the given configuration.
// A connection string takes precedence over AccountURL. No network
// call is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		maxList:   int32(cfg.MaxListSize),
		logger:    logger.With("system", "storage"),
	}, nil
}

func newClient(cfg *Config) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := credential()
	if err != nil {
		return nil, err
	}
	return azblob.NewClient(cfg.AccountURL, cred, nil)
}

func credential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve azure credential: %w", err)
	}
	return cred, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() error {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return fmt.Errorf("initialize container %s: %w", a.container, err)
		}

		a.logger.Info("storage container ready", "container", a.container)
		return nil
	})

	return nil
}

func (a *azure) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	}
	if _, err := a.client.UploadBuffer(ctx, a.container, key, data, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

func (a *azure) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

func (a *azure) List(ctx context.Context, prefix string) ([]Object, error) {
	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: &a.maxList,
	})

	objects := make([]Object, 0)
	for pager.More() && len(objects) < int(a.maxList) {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			objects = append(objects, toObject(item.Name, item.Properties.ContentLength,
				item.Properties.ContentType, item.Properties.LastModified))
		}
	}

	if len(objects) > int(a.maxList) {
		objects = objects[:a.maxList]
	}
	return objects, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, key, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func toObject(name *string, size *int64, contentType *string, modified *time.Time) Object {
	var o Object
	if name != nil {
		o.Key = *name
	}
	if size != nil {
		o.Size = *size
	}
	if contentType != nil {
		o.ContentType = *contentType
	}
	if modified != nil {
		o.LastModified = *modified
	}
	return o
}

// ValidateKey rejects empty keys and keys with path traversal segments.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

type disabled struct{}

// Disabled returns a System whose operations fail with ErrDisabled.
func Disabled() System {
	return disabled{}
}

func (disabled) Start(*lifecycle.Coordinator) error { return nil }

func (disabled) Put(context.Context, string, []byte, string) error { return ErrDisabled }

func (disabled) Get(context.Context, string) ([]byte, error) { return nil, ErrDisabled }

func (disabled) List(context.Context, string) ([]Object, error) { return nil, ErrDisabled }

func (disabled) Delete(context.Context, string) error { return ErrDisabled }
