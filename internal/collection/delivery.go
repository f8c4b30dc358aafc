package collection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"assetdesk/internal/blob"
)

// Artifact describes a delivered export.
type Artifact struct {
	ID          string
	Filename    string
	Key         string
	ContentType string
	Rows        int
	Size        int64
	URL         string
}

// Deliverer hands a serialized export to its destination.
type Deliverer interface {
	Deliver(ctx context.Context, filename string, payload []byte, contentType string) (Artifact, error)
}

// DeliverFunc adapts a function to Deliverer.
type DeliverFunc func(ctx context.Context, filename string, payload []byte, contentType string) (Artifact, error)

// Deliver implements Deliverer.
func (f DeliverFunc) Deliver(ctx context.Context, filename string, payload []byte, contentType string) (Artifact, error) {
	return f(ctx, filename, payload, contentType)
}

const maxDeliverySuffix = 1000

// BlobDeliverer writes exports into a blob store under Prefix. When the dated
// filename is already taken the key gains a "-N" suffix before the extension.
type BlobDeliverer struct {
	Store  blob.Store
	Prefix string
}

// NewBlobDeliverer returns a deliverer writing to store under prefix.
func NewBlobDeliverer(store blob.Store, prefix string) *BlobDeliverer {
	return &BlobDeliverer{Store: store, Prefix: strings.Trim(prefix, "/")}
}

// Deliver implements Deliverer.
func (d *BlobDeliverer) Deliver(ctx context.Context, filename string, payload []byte, contentType string) (Artifact, error) {
	if d.Store == nil {
		return Artifact{}, fmt.Errorf("blob deliverer has no store")
	}
	id := uuid.NewString()
	ext := path.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for n := 0; n < maxDeliverySuffix; n++ {
		name := filename
		if n > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		key := name
		if d.Prefix != "" {
			key = d.Prefix + "/" + name
		}
		info, err := d.Store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"export-id": id},
		})
		if errors.Is(err, blob.ErrExists) {
			continue
		}
		if err != nil {
			return Artifact{}, err
		}
		url, err := d.Store.PresignURL(ctx, key, blob.SignedURLOptions{})
		if err != nil && !errors.Is(err, blob.ErrUnsupported) {
			return Artifact{}, fmt.Errorf("presign %s: %w", key, err)
		}
		return Artifact{
			ID:          id,
			Filename:    name,
			Key:         key,
			ContentType: contentType,
			Size:        info.Size,
			URL:         url,
		}, nil
	}
	return Artifact{}, fmt.Errorf("no free export key for %s after %d attempts", filename, maxDeliverySuffix)
}
