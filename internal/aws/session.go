package aws

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/sirupsen/logrus"

	s3client "github.com/etimal/s3-discover/internal/aws/s3"
	"github.com/etimal/s3-discover/internal/utils"
)

// DefaultRegion is used when the caller does not pick a region.
const DefaultRegion = "us-east-1"

const roleSessionPrefix = "s3-discover"

type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Options selects the identity for a run. An explicit key pair beats
// the default provider chain; RoleARN additionally exchanges whichever
// base identity won for temporary delegated credentials.
type Options struct {
	AccessKeyID     string
	SecretAccessKey string
	RoleARN         string
	Region          string
	Bucket          string
}

// Session is an authenticated handle that has survived one validation
// round-trip against the source bucket.
type Session struct {
	S3        *s3client.Client
	Region    string
	AccountID string
}

// Broker resolves credentials and produces validated Sessions.
type Broker struct {
	log        logrus.FieldLogger
	loadConfig func(ctx context.Context, region string, optFns ...func(*config.LoadOptions) error) (aws.Config, error)
	newSTS     func(cfg aws.Config) STSAPI
	newS3      func(cfg aws.Config) s3client.S3API
}

func NewBroker(log logrus.FieldLogger) *Broker {
	return &Broker{
		log: log,
		loadConfig: func(ctx context.Context, region string, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
			optFns = append([]func(*config.LoadOptions) error{config.WithRegion(region)}, optFns...)
			return config.LoadDefaultConfig(ctx, optFns...)
		},
		newSTS: func(cfg aws.Config) STSAPI { return sts.NewFromConfig(cfg) },
		newS3:  func(cfg aws.Config) s3client.S3API { return awss3.NewFromConfig(cfg) },
	}
}

// Resolve builds the final authenticated session: base credentials,
// optional role exchange, then an eager listing against bucket so a
// session that cannot reach the backend is never handed out.
func (b *Broker) Resolve(ctx context.Context, opts Options) (*Session, error) {
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := b.baseConfig(ctx, region, opts)
	if err != nil {
		return nil, &CredentialError{Err: err}
	}
	if cfg.Credentials == nil {
		return nil, &CredentialError{Err: errors.New("resolved config has no credentials provider")}
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return nil, &CredentialError{Err: err}
	}

	if opts.RoleARN != "" {
		cfg, err = b.assumeRole(ctx, cfg, region, opts.RoleARN)
		if err != nil {
			return nil, err
		}
	}

	api := b.newS3(cfg)
	b.log.WithField("bucket", opts.Bucket).Info("validating connectivity")
	if _, err := api.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{Bucket: aws.String(opts.Bucket)}); err != nil {
		return nil, &ConnectivityError{Bucket: opts.Bucket, Err: err}
	}
	b.log.Info("connectivity validated")

	sess := &Session{
		S3:     s3client.NewClient(api, b.log),
		Region: region,
	}
	// Best effort; an unknown account ID is not fatal.
	if out, err := b.newSTS(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err == nil {
		sess.AccountID = aws.ToString(out.Account)
		b.log.WithField("account_id", sess.AccountID).Info("session ready")
	}
	return sess, nil
}

func (b *Broker) baseConfig(ctx context.Context, region string, opts Options) (aws.Config, error) {
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		b.log.Info("using provided AWS credentials")
		return b.loadConfig(ctx, region, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	b.log.Info("using default AWS credential chain")
	return b.loadConfig(ctx, region)
}

func (b *Broker) assumeRole(ctx context.Context, cfg aws.Config, region, roleARN string) (aws.Config, error) {
	name := roleSessionName()
	b.log.WithFields(logrus.Fields{
		"role":         utils.ShortName(roleARN),
		"session_name": name,
	}).Info("assuming role")

	out, err := b.newSTS(cfg).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(name),
	})
	if err != nil {
		return aws.Config{}, &DelegationError{RoleARN: roleARN, Denied: isDenied(err), Err: err}
	}

	// The base config is only good for the exchange; storage calls run
	// on a fresh config carrying the temporary credentials.
	creds := out.Credentials
	fresh, err := b.loadConfig(ctx, region, config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(
			aws.ToString(creds.AccessKeyId),
			aws.ToString(creds.SecretAccessKey),
			aws.ToString(creds.SessionToken))))
	if err != nil {
		return aws.Config{}, &DelegationError{RoleARN: roleARN, Err: err}
	}
	b.log.Info("successfully assumed role")
	return fresh, nil
}

var lastSessionStamp atomic.Int64

// roleSessionName derives the audit session name from a monotonically
// increasing timestamp. Two calls in one process never produce the
// same name, even on coarse clocks.
func roleSessionName() string {
	stamp := time.Now().UnixNano()
	for {
		prev := lastSessionStamp.Load()
		if stamp <= prev {
			stamp = prev + 1
		}
		if lastSessionStamp.CompareAndSwap(prev, stamp) {
			return fmt.Sprintf("%s-%d", roleSessionPrefix, stamp)
		}
	}
}
