// Package discovery is the library-style entry point: resolve an
// authenticated session, enumerate the source bucket, return the
// normalized listing.
package discovery

import (
	"context"

	"github.com/sirupsen/logrus"

	awsbroker "github.com/etimal/s3-discover/internal/aws"
	"github.com/etimal/s3-discover/internal/aws/s3"
	"github.com/etimal/s3-discover/internal/config"
)

type resolver interface {
	Resolve(ctx context.Context, opts awsbroker.Options) (*awsbroker.Session, error)
}

type Runner struct {
	log      logrus.FieldLogger
	resolver resolver
}

func NewRunner(log logrus.FieldLogger) *Runner {
	return &Runner{log: log, resolver: awsbroker.NewBroker(log)}
}

// Run resolves a session and enumerates the source bucket, strictly in
// that order. Credential, delegation, and connectivity failures
// propagate. A failure of the enumeration itself degrades to an empty
// listing so a listing hiccup never kills the pipeline; consumers that
// need to tell failure from emptiness should call Session.S3 directly
// or consult the warning log.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (s3.Listing, error) {
	if t := cfg.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	sess, err := r.resolver.Resolve(ctx, awsbroker.Options{
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		RoleARN:         cfg.RoleARN,
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
	})
	if err != nil {
		return s3.Listing{}, err
	}

	listing, err := sess.S3.ListObjects(ctx, cfg.Bucket, Prefix(cfg.Folder))
	if err != nil {
		r.log.WithError(err).Warn("listing failed, continuing with empty result")
		return s3.Listing{}, nil
	}
	return listing, nil
}

// Run is the one-shot entry point used by the CLI.
func Run(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (s3.Listing, error) {
	return NewRunner(log).Run(ctx, cfg)
}

// Prefix turns a folder name into a path-style listing prefix.
func Prefix(folder string) string {
	if folder == "" {
		return ""
	}
	return folder + "/"
}
