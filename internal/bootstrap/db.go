package bootstrap

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

type StoreOptions struct {
	ProjectID       string
	CredentialsPath string
	PingTO          time.Duration
}

// OpenStore connects to Firestore and verifies the connection with a
// bounded ping.
func OpenStore(ctx context.Context, opt StoreOptions) (store.Store, error) {
	if opt.ProjectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is not set")
	}
	if opt.PingTO == 0 {
		opt.PingTO = 2 * time.Second
	}

	var opts []option.ClientOption
	if opt.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(opt.CredentialsPath))
	}

	client, err := firestore.NewClient(ctx, opt.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore connect: %w", err)
	}
	fs := store.NewFirestore(client)

	pctx, cancel := context.WithTimeout(ctx, opt.PingTO)
	defer cancel()
	if err := fs.Ping(pctx); err != nil {
		fs.Close()
		return nil, fmt.Errorf("firestore ping: %w", err)
	}

	return fs, nil
}
